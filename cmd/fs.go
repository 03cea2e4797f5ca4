package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"macsim/model"
	"macsim/vfs"
)

func init() {
	fsCmd.AddCommand(fsLsCmd, fsTreeCmd, fsCatCmd, fsQueryCmd, fsExportCmd)
	rootCmd.AddCommand(fsCmd)
}

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "Inspect the saved file system",
}

// withFS runs fn against the configured file system.
func withFS(cmd *cobra.Command, fn func(fs *vfs.Store, w io.Writer) error) error {
	env, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()
	return fn(env.fs, cmd.OutOrStdout())
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "/"
	}
	return args[0]
}

var fsLsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFS(cmd, func(fs *vfs.Store, w io.Writer) error {
			return list(fs, w, pathArg(args))
		})
	},
}

var fsTreeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Print a folder and everything below it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFS(cmd, func(fs *vfs.Store, w io.Writer) error {
			return tree(fs, w, pathArg(args))
		})
	},
}

var fsCatCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFS(cmd, func(fs *vfs.Store, w io.Writer) error {
			return cat(fs, w, args[0])
		})
	},
}

var fsQueryCmd = &cobra.Command{
	Use:     "query <jsonpath>",
	Short:   "Run a JSONPath expression over the node table",
	Example: `  macsim fs query '$..[?(@.type == "file")].name'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFS(cmd, func(fs *vfs.Store, w io.Writer) error {
			return query(fs, w, args[0])
		})
	},
}

var fsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the node table as stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFS(cmd, func(fs *vfs.Store, w io.Writer) error {
			data, err := vfs.Encode(fs.Snapshot())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(data))
			return err
		})
	},
}

func entryName(n model.Node) string {
	if n.IsFolder() {
		return n.Name + "/"
	}
	return n.Name
}

func list(fs *vfs.Store, w io.Writer, path string) error {
	n, err := fs.Resolve("", path)
	if err != nil {
		return err
	}
	if n.IsFile() {
		_, err = fmt.Fprintln(w, n.Name)
		return err
	}
	for _, c := range fs.GetChildren(n.ID) {
		size := fmt.Sprintf("%d items", len(fs.GetChildren(c.ID)))
		if c.IsFile() {
			size = fmt.Sprintf("%d bytes", len(c.Content))
		}
		fmt.Fprintf(w, "%-32s %-10s %s\n", entryName(c), size, c.UpdatedAt.Time().Format("Jan 2 15:04"))
	}
	return nil
}

func tree(fs *vfs.Store, w io.Writer, path string) error {
	n, err := fs.Resolve("", path)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, entryName(n))
	var walk func(id, indent string)
	walk = func(id, indent string) {
		children := fs.GetChildren(id)
		for i, c := range children {
			branch, next := "├── ", "│   "
			if i == len(children)-1 {
				branch, next = "└── ", "    "
			}
			fmt.Fprintln(w, indent+branch+entryName(c))
			if c.IsFolder() {
				walk(c.ID, indent+next)
			}
		}
	}
	walk(n.ID, "")
	return nil
}

func cat(fs *vfs.Store, w io.Writer, path string) error {
	n, err := fs.Resolve("", path)
	if err != nil {
		return err
	}
	if !n.IsFile() {
		return fmt.Errorf("%s is a folder", fs.PathString(n.ID))
	}
	_, err = io.WriteString(w, n.Content)
	if err == nil && !strings.HasSuffix(n.Content, "\n") {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

// query evaluates expr against the table in its stored JSON shape.
func query(fs *vfs.Store, w io.Writer, expr string) error {
	x, err := jp.ParseString(expr)
	if err != nil {
		return fmt.Errorf("invalid jsonpath %q: %w", expr, err)
	}
	data, err := vfs.Encode(fs.Snapshot())
	if err != nil {
		return err
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return err
	}
	for _, v := range x.Get(doc) {
		if s, ok := v.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		fmt.Fprintln(w, oj.JSON(v, &oj.Options{Sort: true}))
	}
	return nil
}
