package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"suratapi/internal/seed"
)

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load units, classifications and users from YAML",
		Long: `Load reference data from a YAML file into the configured store.

Items are upserted, so seeding the same file twice is safe.

Example:
  suratapi seed configs/seed.example.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := a.openStores(ctx)
			if err != nil {
				return err
			}
			defer st.close()

			units, classes, users := st.catalogs()
			res, err := seed.Apply(ctx, f, seed.Catalogs{Units: units, Classifications: classes, Users: users})
			printSeedResult(cmd, res)
			if err != nil {
				cmd.PrintErrln(errStyle.Render(err.Error()))
				return &exitError{code: 1, err: err}
			}
			return nil
		},
	}
}

func printSeedResult(cmd *cobra.Command, res seed.Result) {
	kinds := map[string]struct{}{}
	for k := range res.Created {
		kinds[k] = struct{}{}
	}
	for k := range res.Updated {
		kinds[k] = struct{}{}
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)

	cmd.Println(headerStyle.Render("seed"))
	for _, k := range names {
		cmd.Printf("  %s %s\n",
			labelStyle.Render(k),
			okStyle.Render(fmt.Sprintf("%d created, %d updated", res.Created[k], res.Updated[k])))
	}
}
