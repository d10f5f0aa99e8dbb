// Command pkgresolve-demo loads opkg-style Packages feeds and a status
// file and resolves the install set for a named package, for manual
// inspection of the resolver's decisions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pkgindex "github.com/opkg-go/pkgresolve"
	"github.com/opkg-go/pkgresolve/feed"
)

// Version information.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

var (
	feedPaths  []string
	statusPath string
	arches     string
	offlineRoot string
	logLevel   string
)

func buildIndex(ctx context.Context, argv []string) (*pkgindex.Index, error) {
	log := pkgindex.NewZapLogger(logLevel)
	host := newFileHost(feedPaths, statusPath, splitCSV(arches), offlineRoot, log, argv)
	ix := pkgindex.NewIndex(host)
	loader := feed.NewLoader(ix, host)

	if err := loader.LoadFeeds(ctx); err != nil {
		return nil, err
	}
	if statusPath != "" {
		if err := loader.LoadStatusFiles(ctx); err != nil {
			return nil, err
		}
		if err := loader.LoadPackageDetails(ctx); err != nil {
			log.Noticef("%v", err)
		}
	}
	return ix, nil
}

func executeResolve(cmd *cobra.Command, args []string) error {
	name := args[0]
	ix, err := buildIndex(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	ab, ok := ix.FetchAbstract(name)
	if !ok {
		return fmt.Errorf("unknown package %q", name)
	}
	root, err := ix.FetchBestCandidate(ab, nil, args, false)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", name, err)
	}
	if root == nil {
		return fmt.Errorf("no installable candidate for %s", name)
	}

	graph, err := ix.ResolveInstall(root, args)
	if err != nil {
		return fmt.Errorf("building install graph for %s: %w", name, err)
	}
	fmt.Print(graph.String())
	return nil
}

func executeUnsatisfied(cmd *cobra.Command, args []string) error {
	name := args[0]
	ix, err := buildIndex(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	ab, ok := ix.FetchAbstract(name)
	if !ok {
		return fmt.Errorf("unknown package %q", name)
	}
	root, err := ix.FetchBestCandidate(ab, nil, args, false)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", name, err)
	}
	if root == nil {
		return fmt.Errorf("no installable candidate for %s", name)
	}

	unsatisfied, unresolved, err := ix.FetchUnsatisfied(root, false)
	if err != nil {
		return fmt.Errorf("resolving dependencies of %s: %w", name, err)
	}
	for _, p := range unsatisfied {
		fmt.Printf("install %s %s\n", p.Name, p.Version)
	}
	for _, u := range unresolved {
		fmt.Printf("unresolved: %s\n", u)
	}
	return nil
}

func executeVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("pkgresolve-demo v%s (built %s)\n", Version, BuildDate)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pkgresolve-demo",
		Short: "Resolve opkg-style package dependencies from local feeds",
	}
	rootCmd.PersistentFlags().StringSliceVarP(&feedPaths, "feed", "f", nil, "path to a Packages feed file (repeatable)")
	rootCmd.PersistentFlags().StringVarP(&statusPath, "status", "s", "", "path to a status file")
	rootCmd.PersistentFlags().StringVarP(&arches, "arches", "a", "", "comma-separated accepted architectures, highest priority first")
	rootCmd.PersistentFlags().StringVarP(&offlineRoot, "offline-root", "r", "", "offline root prefix to strip from file-owner paths")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "notice", "log level: error, notice, info, debug, debug2")

	resolveCmd := &cobra.Command{
		Use:   "resolve PACKAGE",
		Short: "Print the install graph for PACKAGE",
		Args:  cobra.ExactArgs(1),
		RunE:  executeResolve,
	}
	unsatisfiedCmd := &cobra.Command{
		Use:   "unsatisfied PACKAGE",
		Short: "List the packages needed to satisfy PACKAGE's dependencies",
		Args:  cobra.ExactArgs(1),
		RunE:  executeUnsatisfied,
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run:   executeVersion,
	}

	rootCmd.AddCommand(resolveCmd, unsatisfiedCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
