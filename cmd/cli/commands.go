package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"whiskr/internal/client"
)

func credentialFlags(email, password *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Aliases:     []string{"e"},
			Usage:       "Account email",
			Required:    true,
			Destination: email,
		},
		&cli.StringFlag{
			Name:        "password",
			Aliases:     []string{"p"},
			Usage:       "Account password (prompted when omitted)",
			EnvVars:     []string{"WHISKR_PASSWORD"},
			Destination: password,
		},
	}
}

func registerCmd(g *globals) *cli.Command {
	var email, password string
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and log in",
		Flags: credentialFlags(&email, &password),
		Action: func(c *cli.Context) error {
			if password == "" {
				p, err := promptPassword("Choose a password: ")
				if err != nil {
					return err
				}
				password = p
			}
			s, err := g.api.Register(c.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "registered as %s (%s)\n", s.Email, s.UserID)
			return nil
		},
	}
}

func loginCmd(g *globals) *cli.Command {
	var email, password string
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and store the session",
		Flags: credentialFlags(&email, &password),
		Action: func(c *cli.Context) error {
			if password == "" {
				p, err := promptPassword("Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			s, err := g.api.Login(c.Context, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "logged in as %s\n", s.Email)
			return nil
		},
	}
}

func logoutCmd(g *globals) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session",
		Action: func(c *cli.Context) error {
			if err := g.api.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "logged out")
			return nil
		},
	}
}

func whoamiCmd(g *globals) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the stored session",
		Action: func(c *cli.Context) error {
			s := g.api.Session()
			if !s.IsAuthenticated() {
				return client.ErrNotLoggedIn
			}
			fmt.Fprintf(c.App.Writer, "%s (%s)\n", s.Email, s.UserID)
			return nil
		},
	}
}

func recipesCmd(g *globals) *cli.Command {
	var search, title, content string
	return &cli.Command{
		Name:    "recipes",
		Aliases: []string{"r"},
		Usage:   "Browse and manage recipes",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recipes, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Filter by title or content", Destination: &search},
				},
				Action: func(c *cli.Context) error {
					recipes, err := g.api.ListRecipes(c.Context, search)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tTITLE\tCREATED")
					for _, r := range recipes {
						fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Title, r.CreatedAt.Format("2006-01-02 15:04"))
					}
					return w.Flush()
				},
			},
			{
				Name:      "show",
				Usage:     "Print one recipe",
				ArgsUsage: "<recipe-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "recipe id")
					if err != nil {
						return err
					}
					r, err := g.api.GetRecipe(c.Context, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s\n\n%s\n", r.Title, r.Content)
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "Create a recipe",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Destination: &title},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Recipe text (read from stdin when omitted)", Destination: &content},
				},
				Action: func(c *cli.Context) error {
					if content == "" {
						text, err := readAll(c)
						if err != nil {
							return err
						}
						content = text
					}
					r, err := g.api.CreateRecipe(c.Context, title, content)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, r.ID)
					return nil
				},
			},
			{
				Name:      "edit",
				Usage:     "Replace a recipe's title and content",
				ArgsUsage: "<recipe-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Destination: &title},
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Destination: &content},
				},
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "recipe id")
					if err != nil {
						return err
					}
					if _, err := g.api.UpdateRecipe(c.Context, id, title, content); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "updated")
					return nil
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a recipe you own",
				ArgsUsage: "<recipe-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "recipe id")
					if err != nil {
						return err
					}
					if err := g.api.DeleteRecipe(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "deleted")
					return nil
				},
			},
		},
	}
}

func rateCmd(g *globals) *cli.Command {
	return &cli.Command{
		Name:      "rate",
		Usage:     "Rate a recipe from 1 to 5",
		ArgsUsage: "<recipe-id> <value>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "recipe id")
			if err != nil {
				return err
			}
			raw, err := requireArg(c, 1, "value")
			if err != nil {
				return err
			}
			value, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("value must be a number: %w", err)
			}
			r, err := g.api.Rate(c.Context, id, value)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "rated %d (%s)\n", r.Value, r.ID)
			return nil
		},
	}
}

func ratingsCmd(g *globals) *cli.Command {
	return &cli.Command{
		Name:      "ratings",
		Usage:     "List ratings, optionally for one recipe",
		ArgsUsage: "[recipe-id]",
		Action: func(c *cli.Context) error {
			ratings, err := g.api.Ratings(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RECIPE\tUSER\tVALUE")
			for _, r := range ratings {
				fmt.Fprintf(w, "%s\t%s\t%d\n", r.RecipeID, r.UserID, r.Value)
			}
			return w.Flush()
		},
	}
}

func bookmarksCmd(g *globals) *cli.Command {
	return &cli.Command{
		Name:    "bookmarks",
		Aliases: []string{"b"},
		Usage:   "Manage your bookmarks",
		Action: func(c *cli.Context) error {
			bookmarks, err := g.api.Bookmarks(c.Context)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RECIPE\tTITLE")
			for _, b := range bookmarks {
				fmt.Fprintf(w, "%s\t%s\n", b.RecipeID, b.Title)
			}
			return w.Flush()
		},
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Bookmark a recipe",
				ArgsUsage: "<recipe-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "recipe id")
					if err != nil {
						return err
					}
					return g.api.Bookmark(c.Context, id)
				},
			},
			{
				Name:      "rm",
				Usage:     "Remove a bookmark",
				ArgsUsage: "<recipe-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "recipe id")
					if err != nil {
						return err
					}
					return g.api.Unbookmark(c.Context, id)
				},
			},
		},
	}
}

func requireArg(c *cli.Context, i int, name string) (string, error) {
	v := strings.TrimSpace(c.Args().Get(i))
	if v == "" {
		return "", fmt.Errorf("missing %s", name)
	}
	return v, nil
}

func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password required: pass --password or run in a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func readAll(c *cli.Context) (string, error) {
	var sb strings.Builder
	sc := bufio.NewScanner(c.App.Reader)
	for sc.Scan() {
		sb.WriteString(sc.Text())
		sb.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
