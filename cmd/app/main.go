package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	if err := rootCommand().Run(context.Background(), args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "pcforge",
		Usage: "PC part marketplace client: catalog, builder, forum and admin tools",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			serveCommand(),
			authCommand(),
			partsCommand(),
			builderCommand(),
			buildsCommand(),
			forumCommand(),
			profileCommand(),
			adminCommand(),
			filesCommand(),
		},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication commands",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "confirm-password", Usage: "defaults to --password"},
					&cli.StringFlag{Name: "name", Required: true, Usage: "full name"},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					confirmPassword := c.String("password")
					if c.IsSet("confirm-password") {
						confirmPassword = c.String("confirm-password")
					}
					user, err := rt.app.Auth.Register(ctx, application.RegisterForm{
						Email:           c.String("email"),
						Password:        c.String("password"),
						ConfirmPassword: confirmPassword,
						FullName:        c.String("name"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("registered %s (#%d); sign in with `pcforge auth login`\n", user.Email, user.ID)
					return nil
				}),
			},
			{
				Name:  "login",
				Usage: "Sign in and store the token locally",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					user, err := rt.app.Auth.SignIn(ctx, application.LoginForm{Email: c.String("email"), Password: c.String("password")})
					if err != nil {
						return err
					}
					fmt.Printf("logged in as %s\n", user.Email)
					return nil
				}),
			},
			{
				Name:  "logout",
				Usage: "Sign out and forget the stored token",
				Flags: []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					if err := confirm(c, "Sign out", "Sign out of pcforge?"); err != nil {
						return err
					}
					if err := rt.app.Auth.SignOut(ctx); err != nil {
						return err
					}
					fmt.Println("logged out")
					return nil
				}),
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					user, err := rt.app.Session.RequireUser()
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(user)
					}
					printKV([][2]string{{"id", formatID(user.ID)}, {"email", user.Email}, {"name", user.FullName}, {"role", string(user.Role)}})
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "Show the session state and token expiry",
				Flags: []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					snap := rt.app.Session.Snapshot()
					expiry, ok, err := rt.app.Session.TokenExpiry(ctx)
					if err != nil {
						rt.log.Debug("token expiry unreadable", zap.Error(err))
					}
					if c.Bool("json") {
						out := struct {
							application.SessionSnapshot
							ExpiresAt string `json:"expires_at,omitempty"`
						}{SessionSnapshot: snap}
						if ok {
							out.ExpiresAt = expiry.UTC().Format("2006-01-02T15:04:05Z")
						}
						return printJSON(out)
					}
					printSession(snap, expiry, ok)
					return nil
				}),
			},
		},
	}
}

func partsCommand() *cli.Command {
	return &cli.Command{
		Name:  "parts",
		Usage: "Browse and manage the parts catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List parts with filters",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "zero-based page"},
					&cli.IntFlag{Name: "size", Value: application.DefaultPartsPageSize},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "brand"},
					&cli.StringFlag{Name: "min-price"},
					&cli.StringFlag{Name: "max-price"},
					&cli.StringFlag{Name: "q", Usage: "name search"},
					&cli.StringFlag{Name: "sort", Value: "createdAt-desc", Usage: strings.Join(application.SortOptions, ", ")},
					jsonFlag(),
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					f := domain.PartFilter{
						Page:     c.Int("page"),
						Size:     c.Int("size"),
						Brand:    c.String("brand"),
						MinPrice: c.String("min-price"),
						MaxPrice: c.String("max-price"),
						Query:    c.String("q"),
					}
					if c.String("category") != "" {
						cat, err := parseCategory(c.String("category"))
						if err != nil {
							return err
						}
						f.Category = cat
					}
					f.SortBy, f.SortDir = application.ParseSort(c.String("sort"))
					page, err := rt.app.Catalog.ListParts(ctx, f)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(page)
					}
					printParts(page)
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "Show a part with specs, price history and ratings",
				ArgsUsage: "PART_ID",
				Flags:     []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Part ID")
					if err != nil {
						return err
					}
					detail, err := rt.app.Catalog.PartDetail(ctx, id)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(detail)
					}
					printPartDetail(detail, rt.cfg.APIURL)
					return nil
				}),
			},
			{
				Name:      "prices",
				Usage:     "Show a part's price history, oldest first",
				ArgsUsage: "PART_ID",
				Flags:     []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Part ID")
					if err != nil {
						return err
					}
					detail, err := rt.app.Catalog.PartDetail(ctx, id)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(detail.Prices)
					}
					printPrices(detail.Prices)
					return nil
				}),
			},
			{
				Name:      "compare",
				Usage:     "Compare two parts of the same category, or list candidates",
				ArgsUsage: "LEFT_ID [RIGHT_ID]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Usage: "narrow candidates by name"},
					jsonFlag(),
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					left, err := argID(c, 0, "Part ID")
					if err != nil {
						return err
					}
					var right int64
					if c.Args().Len() > 1 {
						if right, err = argID(c, 1, "Part ID"); err != nil {
							return err
						}
					}
					cmp, err := rt.app.Catalog.Compare(ctx, left, right)
					if err != nil {
						return err
					}
					cmp.Candidates = application.FilterByName(cmp.Candidates, c.String("filter"))
					if c.Bool("json") {
						return printJSON(cmp)
					}
					printComparison(cmp)
					return nil
				}),
			},
			{
				Name:      "rate",
				Usage:     "Rate a part from 1 to 5",
				ArgsUsage: "PART_ID",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "score", Required: true},
					&cli.StringFlag{Name: "content"},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Part ID")
					if err != nil {
						return err
					}
					rating, err := rt.app.Catalog.RatePart(ctx, id, application.RatingForm{Score: c.Int("score"), Content: c.String("content")})
					if err != nil {
						return err
					}
					fmt.Printf("rated part %d: %d/5\n", id, rating.Score)
					return nil
				}),
			},
			{
				Name:      "crawl",
				Usage:     "Refresh one part's price from its crawl URL (admin)",
				ArgsUsage: "PART_ID",
				Flags:     []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Part ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireAdmin(); err != nil {
						return err
					}
					part, err := rt.app.Catalog.CrawlPrice(ctx, id)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(part)
					}
					fmt.Printf("%s now %s\n", part.Name, application.FormatPrice(part.Price))
					return nil
				}),
			},
			{
				Name:  "crawl-all",
				Usage: "Refresh the price of every listed part (admin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category"},
					&cli.IntFlag{Name: "limit", Value: 1000, Usage: "parts to load"},
					jsonFlag(),
					yesFlag(),
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					f := domain.PartFilter{Size: c.Int("limit")}
					if c.String("category") != "" {
						cat, err := parseCategory(c.String("category"))
						if err != nil {
							return err
						}
						f.Category = cat
					}
					if _, err := rt.app.Session.RequireAdmin(); err != nil {
						return err
					}
					page, err := rt.app.Catalog.ListParts(ctx, f)
					if err != nil {
						return err
					}
					msg := fmt.Sprintf("Crawl fresh prices for %d parts?", len(page.Content))
					if err := confirm(c, "Refresh all prices", msg); err != nil {
						return err
					}
					report, err := rt.app.Catalog.RefreshAllPrices(ctx, page.Content)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(report)
					}
					printRefreshReport(report)
					return nil
				}),
			},
			{
				Name:  "create",
				Usage: "Create a part (admin)",
				Flags: append(partFormFlags(),
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "category", Required: true},
					&cli.BoolFlag{Name: "preset", Usage: "start the specs from the category preset"},
				),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					cat, err := parseCategory(c.String("category"))
					if err != nil {
						return err
					}
					editor := application.NewSpecEditor(cat, nil, rt.cfg.Debounce, nil)
					defer editor.Close()
					if !c.Bool("preset") {
						editor.Clear()
					}
					specJSON, err := applySpecFlags(editor, c.StringSlice("spec"), c.StringSlice("unset-spec"))
					if err != nil {
						return err
					}
					form := application.PartForm{
						Name:     c.String("name"),
						Category: cat,
						Brand:    c.String("brand"),
						Price:    c.Float("price"),
						Wattage:  c.Int("wattage"),
						ImageURL: c.String("image-url"),
						SpecJSON: specJSON,
						CrawlURL: c.String("crawl-url"),
					}
					// The CLI holds no part list to patch.
					part, err := rt.app.Catalog.CreatePart(ctx, nil, form)
					if err != nil {
						return err
					}
					fmt.Printf("created part %d: %s\n", part.ID, part.Name)
					return nil
				}),
			},
			{
				Name:      "update",
				Usage:     "Update a part; unset flags keep their current values (admin)",
				ArgsUsage: "PART_ID",
				Flags: append(partFormFlags(),
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "category"},
				),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Part ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireAdmin(); err != nil {
						return err
					}
					detail, err := rt.app.Catalog.PartDetail(ctx, id)
					if err != nil {
						return err
					}
					cur := detail.Part
					form := application.PartForm{
						Name:     cur.Name,
						Category: cur.Category,
						Brand:    cur.Brand,
						Price:    cur.Price,
						Wattage:  cur.Wattage,
						ImageURL: cur.ImageURL,
						CrawlURL: cur.CrawlURL,
					}
					if c.IsSet("name") {
						form.Name = c.String("name")
					}
					if c.IsSet("category") {
						if form.Category, err = parseCategory(c.String("category")); err != nil {
							return err
						}
					}
					if c.IsSet("brand") {
						form.Brand = c.String("brand")
					}
					if c.IsSet("price") {
						form.Price = c.Float("price")
					}
					if c.IsSet("wattage") {
						form.Wattage = c.Int("wattage")
					}
					if c.IsSet("image-url") {
						form.ImageURL = c.String("image-url")
					}
					if c.IsSet("crawl-url") {
						form.CrawlURL = c.String("crawl-url")
					}

					specs, _ := cur.Specs()
					editor := application.NewSpecEditor(form.Category, specs, rt.cfg.Debounce, nil)
					defer editor.Close()
					if form.SpecJSON, err = applySpecFlags(editor, c.StringSlice("spec"), c.StringSlice("unset-spec")); err != nil {
						return err
					}

					// The CLI holds no part list to patch.
					part, err := rt.app.Catalog.UpdatePart(ctx, nil, id, form)
					if err != nil {
						return err
					}
					fmt.Printf("updated part %d: %s\n", part.ID, part.Name)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a part (admin)",
				ArgsUsage: "PART_ID",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Part ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireAdmin(); err != nil {
						return err
					}
					if err := confirm(c, "Delete part", fmt.Sprintf("Delete part %d? This cannot be undone.", id)); err != nil {
						return err
					}
					// The CLI holds no part list to patch.
					if err := rt.app.Catalog.DeletePart(ctx, nil, id); err != nil {
						return err
					}
					fmt.Printf("deleted part %d\n", id)
					return nil
				}),
			},
			{
				Name:      "spec-keys",
				Usage:     "List the preset and allowed spec keys of a category",
				ArgsUsage: "CATEGORY",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					cat, err := argCategory(c, 0)
					if err != nil {
						return err
					}
					editor := application.NewSpecEditor(cat, nil, 0, nil)
					defer editor.Close()
					preset := editor.Fields()
					editor.Clear()
					allowed := editor.AllowedKeys()
					if c.Bool("json") {
						presetKeys := make([]string, 0, len(preset))
						for _, f := range preset {
							presetKeys = append(presetKeys, f.Key)
						}
						return printJSON(map[string][]string{"preset": presetKeys, "allowed": allowed})
					}
					fmt.Println("preset")
					printSpecFields(preset)
					fmt.Println("\nallowed")
					for _, k := range allowed {
						fmt.Println("  " + k)
					}
					return nil
				},
			},
		},
	}
}

func partFormFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "brand"},
		&cli.FloatFlag{Name: "price"},
		&cli.IntFlag{Name: "wattage"},
		&cli.StringFlag{Name: "image-url"},
		&cli.StringFlag{Name: "crawl-url"},
		&cli.StringSliceFlag{Name: "spec", Usage: "key=value, repeatable"},
		&cli.StringSliceFlag{Name: "unset-spec", Usage: "spec key to drop, repeatable"},
	}
}

func builderCommand() *cli.Command {
	return &cli.Command{
		Name:  "builder",
		Usage: "Assemble a build draft kept in the local store",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the draft with totals and compatibility",
				Flags: []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					draft, err := rt.app.Builder.Draft(ctx)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(draft)
					}
					printDraft(draft)
					return nil
				}),
			},
			{
				Name:      "candidates",
				Usage:     "List parts available for a slot",
				ArgsUsage: "CATEGORY",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Usage: "narrow by name"},
					jsonFlag(),
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					cat, err := argCategory(c, 0)
					if err != nil {
						return err
					}
					parts, err := rt.app.Builder.Candidates(ctx, cat)
					if err != nil {
						return err
					}
					parts = application.FilterByName(parts, c.String("filter"))
					if c.Bool("json") {
						return printJSON(parts)
					}
					printPartList(parts)
					return nil
				}),
			},
			{
				Name:      "add",
				Usage:     "Put a part into its category slot",
				ArgsUsage: "PART_ID",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Part ID")
					if err != nil {
						return err
					}
					part, err := rt.app.Builder.SelectPart(ctx, id)
					if err != nil {
						return err
					}
					fmt.Printf("%s slot: %s\n", part.Category.Label(), part.Name)
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "Empty a category slot",
				ArgsUsage: "CATEGORY",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					cat, err := argCategory(c, 0)
					if err != nil {
						return err
					}
					if err := rt.app.Builder.RemoveCategory(ctx, cat); err != nil {
						return err
					}
					fmt.Printf("%s slot emptied\n", cat.Label())
					return nil
				}),
			},
			{
				Name:      "title",
				Usage:     "Set the draft title",
				ArgsUsage: "TITLE",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					title := strings.Join(c.Args().Slice(), " ")
					if strings.TrimSpace(title) == "" {
						return usagef("title is required")
					}
					return rt.app.Builder.SetTitle(ctx, title)
				}),
			},
			{
				Name:  "save",
				Usage: "Save the draft as a build",
				Flags: []cli.Flag{&cli.StringFlag{Name: "title", Usage: "defaults to the draft title"}},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					build, err := rt.app.Builder.Save(ctx, c.String("title"))
					if err != nil {
						return err
					}
					fmt.Printf("saved build %d: %s\n", build.ID, build.Title)
					return nil
				}),
			},
			{
				Name:      "load",
				Usage:     "Replace the draft with a saved build",
				ArgsUsage: "BUILD_ID",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Build ID")
					if err != nil {
						return err
					}
					current, err := rt.app.Builder.Draft(ctx)
					if err != nil {
						return err
					}
					if len(current.PartIDs()) > 0 {
						if err := confirm(c, "Load build", "Replace the current draft?"); err != nil {
							return err
						}
					}
					draft, err := rt.app.Builder.LoadBuild(ctx, id)
					if err != nil {
						return err
					}
					printDraft(draft)
					return nil
				}),
			},
			{
				Name:  "reset",
				Usage: "Clear the draft",
				Flags: []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					if err := confirm(c, "Reset draft", "Remove every part and the title from the draft?"); err != nil {
						return err
					}
					if err := rt.app.Builder.Reset(ctx); err != nil {
						return err
					}
					fmt.Println("draft cleared")
					return nil
				}),
			},
			{
				Name:  "share",
				Usage: "Post the current draft to the forum",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "defaults to the draft title"},
					&cli.BoolFlag{Name: "dry-run", Usage: "print the post body only"},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					draft, err := rt.app.Builder.Draft(ctx)
					if err != nil {
						return err
					}
					if len(draft.PartIDs()) == 0 {
						return domain.ValidationError("select at least one part")
					}
					content := application.ShareContent(application.ShareFromDraft(draft))
					if c.Bool("dry-run") {
						fmt.Print(content)
						return nil
					}
					title := c.String("title")
					if title == "" {
						title = draft.Title
					}
					post, err := rt.app.Forum.CreatePost(ctx, application.PostForm{Title: title, Content: content})
					if err != nil {
						return err
					}
					fmt.Printf("shared as post %d\n", post.ID)
					return nil
				}),
			},
		},
	}
}

func buildsCommand() *cli.Command {
	return &cli.Command{
		Name:  "builds",
		Usage: "Saved builds",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a user's builds, your own by default",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Usage: "user ID"},
					jsonFlag(),
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					userID := c.Int64("user")
					if userID == 0 {
						me, err := rt.app.Session.RequireUser()
						if err != nil {
							return err
						}
						userID = me.ID
					}
					profile, err := rt.app.Profile.Load(ctx, userID)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(profile.Builds)
					}
					printBuilds(profile.Builds)
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "Show a build",
				ArgsUsage: "BUILD_ID",
				Flags:     []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Build ID")
					if err != nil {
						return err
					}
					build, err := rt.app.Profile.Build(ctx, id)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(build)
					}
					printBuild(build)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete one of your builds",
				ArgsUsage: "BUILD_ID",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Build ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireUser(); err != nil {
						return err
					}
					if err := confirm(c, "Delete build", fmt.Sprintf("Delete build %d?", id)); err != nil {
						return err
					}
					if err := rt.app.Profile.DeleteBuild(ctx, id); err != nil {
						return err
					}
					fmt.Printf("deleted build %d\n", id)
					return nil
				}),
			},
			{
				Name:      "share",
				Usage:     "Post a saved build to the forum",
				ArgsUsage: "BUILD_ID",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "title", Usage: "defaults to the build title"}},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Build ID")
					if err != nil {
						return err
					}
					post, err := rt.app.Forum.CreatePost(ctx, application.PostForm{Title: c.String("title"), BuildID: &id})
					if err != nil {
						return err
					}
					fmt.Printf("shared as post %d\n", post.ID)
					return nil
				}),
			},
		},
	}
}

func forumCommand() *cli.Command {
	return &cli.Command{
		Name:  "forum",
		Usage: "Forum posts, comments and reactions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List posts",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "zero-based page"},
					jsonFlag(),
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					page, err := rt.app.Forum.ListPosts(ctx, c.Int("page"))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(page)
					}
					printPosts(page)
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "Show a post with its comment tree",
				ArgsUsage: "POST_ID",
				Flags:     []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Post ID")
					if err != nil {
						return err
					}
					detail, err := rt.app.Forum.PostDetail(ctx, id)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(detail)
					}
					printPostDetail(detail, rt.cfg.APIURL)
					return nil
				}),
			},
			{
				Name:  "post",
				Usage: "Create a post",
				Flags: append(postFormFlags(), &cli.StringFlag{Name: "title", Required: true}),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					images, err := postImages(ctx, c, rt)
					if err != nil {
						return err
					}
					post, err := rt.app.Forum.CreatePost(ctx, application.PostForm{
						Title:     c.String("title"),
						Content:   c.String("content"),
						ImageURLs: images,
						BuildID:   optionalID(c, "build"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("created post %d\n", post.ID)
					return nil
				}),
			},
			{
				Name:      "edit",
				Usage:     "Edit one of your posts; unset flags keep their current values",
				ArgsUsage: "POST_ID",
				Flags:     append(postFormFlags(), &cli.StringFlag{Name: "title"}),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Post ID")
					if err != nil {
						return err
					}
					detail, err := rt.app.Forum.PostDetail(ctx, id)
					if err != nil {
						return err
					}
					form := application.PostForm{Title: detail.Post.Title, Content: detail.Post.Content}
					if c.IsSet("title") {
						form.Title = c.String("title")
					}
					if c.IsSet("content") {
						form.Content = c.String("content")
					}
					if c.IsSet("image") || c.IsSet("image-file") {
						if form.ImageURLs, err = postImages(ctx, c, rt); err != nil {
							return err
						}
					}
					post, err := rt.app.Forum.EditPost(ctx, id, form)
					if err != nil {
						return err
					}
					fmt.Printf("updated post %d\n", post.ID)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete one of your posts",
				ArgsUsage: "POST_ID",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Post ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireUser(); err != nil {
						return err
					}
					if err := confirm(c, "Delete post", fmt.Sprintf("Delete post %d and its comments?", id)); err != nil {
						return err
					}
					if err := rt.app.Forum.DeletePost(ctx, id); err != nil {
						return err
					}
					fmt.Printf("deleted post %d\n", id)
					return nil
				}),
			},
			{
				Name:      "comment",
				Usage:     "Comment on a post or reply to a comment",
				ArgsUsage: "POST_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "content", Required: true},
					&cli.Int64Flag{Name: "reply-to", Usage: "parent comment ID"},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Post ID")
					if err != nil {
						return err
					}
					comment, err := rt.app.Forum.AddComment(ctx, id, application.CommentForm{Content: c.String("content"), ParentID: optionalID(c, "reply-to")})
					if err != nil {
						return err
					}
					fmt.Printf("added comment %d\n", comment.ID)
					return nil
				}),
			},
			{
				Name:      "uncomment",
				Usage:     "Delete one of your comments",
				ArgsUsage: "POST_ID COMMENT_ID",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					postID, err := argID(c, 0, "Post ID")
					if err != nil {
						return err
					}
					commentID, err := argID(c, 1, "Comment ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireUser(); err != nil {
						return err
					}
					if err := confirm(c, "Delete comment", fmt.Sprintf("Delete comment %d?", commentID)); err != nil {
						return err
					}
					if err := rt.app.Forum.DeleteComment(ctx, postID, commentID); err != nil {
						return err
					}
					fmt.Printf("deleted comment %d\n", commentID)
					return nil
				}),
			},
			{
				Name:      "react",
				Usage:     "Like or dislike a post",
				ArgsUsage: "POST_ID like|dislike",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Post ID")
					if err != nil {
						return err
					}
					reaction := domain.ReactionType(c.Args().Get(1))
					if err := rt.app.Forum.React(ctx, id, reaction); err != nil {
						return err
					}
					fmt.Printf("reacted to post %d\n", id)
					return nil
				}),
			},
		},
	}
}

func postFormFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "content"},
		&cli.StringSliceFlag{Name: "image", Usage: "image URL, repeatable"},
		&cli.StringSliceFlag{Name: "image-file", Usage: "local image to upload first, repeatable"},
		&cli.Int64Flag{Name: "build", Usage: "share a saved build; fills empty content"},
	}
}

// postImages uploads --image-file paths and appends their URLs to --image.
// A failed upload aborts the post.
func postImages(ctx context.Context, c *cli.Command, rt *runtime) ([]string, error) {
	images := append([]string(nil), c.StringSlice("image")...)
	files := c.StringSlice("image-file")
	if len(files) == 0 {
		return images, nil
	}
	result, err := rt.app.Files.UploadImages(ctx, files)
	if err != nil {
		return nil, err
	}
	if len(result.Failed) > 0 {
		failed := make([]string, 0, len(result.Failed))
		for path, msg := range result.Failed {
			failed = append(failed, path+": "+msg)
		}
		sort.Strings(failed)
		return nil, fmt.Errorf("upload failed: %s", strings.Join(failed, "; "))
	}
	return append(images, result.URLs...), nil
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "User profiles",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a user's posts and builds, your own by default",
				ArgsUsage: "[USER_ID]",
				Flags:     []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					var userID int64
					if c.Args().Len() > 0 {
						id, err := argID(c, 0, "User ID")
						if err != nil {
							return err
						}
						userID = id
					} else {
						me, err := rt.app.Session.RequireUser()
						if err != nil {
							return err
						}
						userID = me.ID
					}
					profile, err := rt.app.Profile.Load(ctx, userID)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(profile)
					}
					printProfile(profile)
					return nil
				}),
			},
		},
	}
}

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Administration (ADMIN role)",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "List users",
				Flags: []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					users, err := rt.app.Admin.Users(ctx)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(users)
					}
					printUsers(users)
					return nil
				}),
			},
			{
				Name:      "role",
				Usage:     "Change a user's role",
				ArgsUsage: "USER_ID USER|ADMIN",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "User ID")
					if err != nil {
						return err
					}
					role := domain.Role(strings.ToUpper(c.Args().Get(1)))
					if role != domain.RoleUser && role != domain.RoleAdmin {
						return usagef("role must be USER or ADMIN")
					}
					if _, err := rt.app.Session.RequireAdmin(); err != nil {
						return err
					}
					if err := confirm(c, "Change role", fmt.Sprintf("Make user %d %s?", id, role)); err != nil {
						return err
					}
					if err := rt.app.Admin.SetRole(ctx, id, role); err != nil {
						return err
					}
					fmt.Printf("user %d is now %s\n", id, strings.ToUpper(string(role)))
					return nil
				}),
			},
			{
				Name:      "delete-user",
				Usage:     "Delete a user",
				ArgsUsage: "USER_ID",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "User ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireAdmin(); err != nil {
						return err
					}
					if err := confirm(c, "Delete user", fmt.Sprintf("Delete user %d with all their content?", id)); err != nil {
						return err
					}
					if err := rt.app.Admin.DeleteUser(ctx, id); err != nil {
						return err
					}
					fmt.Printf("deleted user %d\n", id)
					return nil
				}),
			},
			{
				Name:  "comments",
				Usage: "List all comments",
				Flags: []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					comments, err := rt.app.Admin.Comments(ctx)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(comments)
					}
					printComments(comments)
					return nil
				}),
			},
			{
				Name:      "delete-comment",
				Usage:     "Delete any comment",
				ArgsUsage: "COMMENT_ID",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Comment ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireAdmin(); err != nil {
						return err
					}
					if err := confirm(c, "Delete comment", fmt.Sprintf("Delete comment %d?", id)); err != nil {
						return err
					}
					if err := rt.app.Admin.DeleteComment(ctx, id); err != nil {
						return err
					}
					fmt.Printf("deleted comment %d\n", id)
					return nil
				}),
			},
			{
				Name:  "posts",
				Usage: "List posts for moderation",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "zero-based page"},
					jsonFlag(),
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					page, err := rt.app.Admin.Posts(ctx, c.Int("page"))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(page)
					}
					printPosts(page)
					return nil
				}),
			},
			{
				Name:      "delete-post",
				Usage:     "Delete any post",
				ArgsUsage: "POST_ID",
				Flags:     []cli.Flag{yesFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					id, err := argID(c, 0, "Post ID")
					if err != nil {
						return err
					}
					if _, err := rt.app.Session.RequireAdmin(); err != nil {
						return err
					}
					if err := confirm(c, "Delete post", fmt.Sprintf("Delete post %d?", id)); err != nil {
						return err
					}
					if err := rt.app.Admin.DeletePost(ctx, id); err != nil {
						return err
					}
					fmt.Printf("deleted post %d\n", id)
					return nil
				}),
			},
		},
	}
}

func filesCommand() *cli.Command {
	return &cli.Command{
		Name:  "files",
		Usage: "Image uploads",
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload images and print their URLs",
				ArgsUsage: "PATH...",
				Flags:     []cli.Flag{jsonFlag()},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					paths := c.Args().Slice()
					if len(paths) == 0 {
						return usagef("at least one file is required")
					}
					result, err := rt.app.Files.UploadImages(ctx, paths)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(result)
					}
					for _, url := range result.URLs {
						fmt.Println(url)
					}
					for path, msg := range result.Failed {
						fmt.Fprintf(os.Stderr, "failed %s: %s\n", path, msg)
					}
					return nil
				}),
			},
		},
	}
}
