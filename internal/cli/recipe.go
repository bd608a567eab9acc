package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/soup/pkg/fsys"
	"github.com/matzehuels/soup/pkg/recipe"
)

// recipeCommand creates the recipe command with its subcommands.
func (c *CLI) recipeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Show, edit and check Recipe.sml manifests",
	}

	cmd.AddCommand(c.recipeShowCommand())
	cmd.AddCommand(c.recipeAddCommand())
	cmd.AddCommand(c.recipeFmtCommand())

	return cmd
}

// recipeShowCommand creates the "recipe show" subcommand.
func (c *CLI) recipeShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [recipe]",
		Short: "Print the name, language, version and dependencies of a recipe",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := recipePath(args)
			if err != nil {
				return err
			}
			rec, err := recipe.LoadFile(fsys.OS{}, path)
			if err != nil {
				return err
			}
			return printRecipe(cmd.OutOrStdout(), path, rec)
		},
	}
}

func printRecipe(w io.Writer, path string, rec *recipe.Recipe) error {
	fmt.Fprintln(w, StyleTitle.Render(rec.Name()))
	printKeyValue(w, "Language", rec.Language().String())
	if rec.HasVersion() {
		v, err := rec.Version()
		if err != nil {
			return err
		}
		printKeyValue(w, "Version", v.String())
	}
	printKeyValue(w, "File", path)

	types, err := rec.DependencyTypes()
	if err != nil {
		return err
	}
	for _, category := range types {
		refs, err := rec.NamedDependencies(category)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render(category))
		for _, ref := range refs {
			printDetail(w, "%s (%s)", ref.String(), ref.Kind)
		}
	}
	return nil
}

// recipeAddCommand creates the "recipe add" subcommand.
func (c *CLI) recipeAddCommand() *cobra.Command {
	var (
		path     string
		category string
	)

	cmd := &cobra.Command{
		Use:   "add <reference>",
		Short: "Append a dependency reference to a recipe",
		Long: `Append a dependency reference to a recipe.

The reference is a local path (../Json) or an external package
(Name@1.2, or Language|Name@1.2). The rest of the file, including
comments and whitespace, is left unchanged.`,
		Example: `  soup recipe add ../Json
  soup recipe add "C#|Tool@0.4.1" --category Build --recipe App/Recipe.sml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(recipe.Categories, category) {
				return fmt.Errorf("unknown category %q (want %s)", category, strings.Join(recipe.Categories, ", "))
			}
			target, err := recipePath(optionalArg(path))
			if err != nil {
				return err
			}
			if err := addDependency(target, category, args[0]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Added %s dependency %s", category, args[0])
			printFile(cmd.OutOrStdout(), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "recipe", "", "recipe file or directory (default: current directory)")
	cmd.Flags().StringVar(&category, "category", recipe.Runtime, "dependency category: Build, Test or Runtime")

	return cmd
}

// addDependency appends ref to the category of the manifest at path and
// writes the document back.
func addDependency(path, category, ref string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rec, err := recipe.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if category == recipe.Runtime {
		err = rec.AddRuntimeDependency(ref)
	} else {
		err = rec.AddDependency(category, ref)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, rec.Document().Bytes(), info.Mode().Perm())
}

// recipeFmtCommand creates the "recipe fmt" subcommand.
func (c *CLI) recipeFmtCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "fmt [recipe]",
		Short: "Check that a recipe survives a parse and write round trip",
		Long: `Parse a recipe and write it back.

With --check nothing is written; the command fails when serializing the
parsed document would change the file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := recipePath(args)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rec, err := recipe.Parse(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			out := rec.Document().Bytes()

			if bytes.Equal(data, out) {
				printSuccess(cmd.OutOrStdout(), "%s round-trips unchanged", path)
				return nil
			}
			if check {
				return fmt.Errorf("%s does not round-trip: serialized document differs from the file", path)
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Rewrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail instead of rewriting when the file would change")

	return cmd
}

func optionalArg(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
