package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/soup/pkg/provider"
	"github.com/matzehuels/soup/pkg/recipe"
)

type packagesOptions struct {
	resolveFlags
	id      int
	jsonOut bool
}

// packagesCommand creates the packages command.
func (c *CLI) packagesCommand() *cobra.Command {
	var opts packagesOptions

	cmd := &cobra.Command{
		Use:   "packages [recipe]",
		Short: "List resolved packages or show one in detail",
		Example: `  soup packages
  soup packages ./App --id 3
  soup packages --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPackages(cmd, args, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&opts.id, "id", 0, "show the package with this id")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of a table")

	return cmd
}

func (c *CLI) runPackages(cmd *cobra.Command, args []string, opts packagesOptions) error {
	res, resolveErr := c.resolve(cmd, args, opts.resolveFlags)
	if res == nil {
		return resolveErr
	}
	p := res.Snapshot.Provider
	w := cmd.OutOrStdout()

	if opts.id != 0 {
		info, err := p.GetPackageInfo(opts.id)
		if err != nil {
			return err
		}
		if opts.jsonOut {
			if err := writeIndentedJSON(w, info); err != nil {
				return err
			}
		} else {
			printPackage(w, info)
		}
	} else if opts.jsonOut {
		infos := make([]provider.PackageInfo, 0, len(p.PackageIDs()))
		for _, id := range p.PackageIDs() {
			info, err := p.GetPackageInfo(id)
			if err != nil {
				return err
			}
			infos = append(infos, info)
		}
		if err := writeIndentedJSON(w, infos); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, packagesTable(p).Render())
	}

	if err := checkNotifications(cmd.ErrOrStderr(), res.Snapshot, opts.strict); err != nil {
		return err
	}
	return resolveErr
}

// printPackage prints one package and its dependencies by category.
func printPackage(w io.Writer, info provider.PackageInfo) {
	fmt.Fprintln(w, StyleTitle.Render(info.Name))
	printKeyValue(w, "ID", strconv.Itoa(info.ID))
	printKeyValue(w, "Language", info.Language)
	if info.Version != "" {
		printKeyValue(w, "Version", info.Version)
	}
	printKeyValue(w, "Prebuilt", strconv.FormatBool(info.IsPrebuilt))
	printKeyValue(w, "Root", info.PackageRoot)
	printKeyValue(w, "Recipe", info.RecipeFile)

	for _, category := range categoryOrder(info.Dependencies) {
		children := info.Dependencies[category]
		if len(children) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render(category))
		for _, child := range children {
			target := "package #" + strconv.Itoa(child.PackageID)
			if child.IsSubGraph {
				target = "graph #" + strconv.Itoa(child.PackageGraphID)
			}
			printDetail(w, "%s %s %s", child.OriginalReference, iconArrow, target)
		}
	}
}

// categoryOrder lists Build, Test and Runtime first, then any other
// categories alphabetically.
func categoryOrder(deps map[string][]provider.PackageChildInfo) []string {
	order := slices.Clone(recipe.Categories)
	for _, category := range slices.Sorted(maps.Keys(deps)) {
		if !slices.Contains(order, category) {
			order = append(order, category)
		}
	}
	return order
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
