package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/analysis"
)

// ErrCacheDisabled is returned by cache subcommands when caching is off.
var ErrCacheDisabled = errors.New("bag-of-words cache is disabled")

// NewCacheCommand creates the cache command group.
func NewCacheCommand() *cobra.Command {
	return newCacheCommandWithDeps()
}

func newCacheCommandWithDeps(runnerOpts ...analysis.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or invalidate the bag-of-words cache",
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cache root directory",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.OutOrStdout(), cfg.Cache.Directory)

			return nil
		},
	}
	addConfigFlag(pathCmd)

	invalidateCmd := &cobra.Command{
		Use:   "invalidate PATH",
		Short: "Remove the cached bag of words for an input path",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return invalidate(c, args[0], runnerOpts)
		},
	}
	addConfigFlag(invalidateCmd)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			rmErr := os.RemoveAll(cfg.Cache.Directory)
			if rmErr != nil {
				return fmt.Errorf("clear cache: %w", rmErr)
			}

			fmt.Fprintf(c.OutOrStdout(), "cleared %s\n", cfg.Cache.Directory)

			return nil
		},
	}
	addConfigFlag(clearCmd)

	cmd.AddCommand(pathCmd, invalidateCmd, clearCmd)

	return cmd
}

func invalidate(c *cobra.Command, path string, runnerOpts []analysis.Option) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if !cfg.Cache.Enabled {
		return ErrCacheDisabled
	}

	runner, err := analysis.New(cfg, runnerOpts...)
	if err != nil {
		return err
	}

	key, err := runner.CacheKey(c.Context(), path)
	if err != nil {
		return err
	}

	cache := runner.Cache()

	existed := cache.Has(key)

	invErr := cache.Invalidate(key)
	if invErr != nil {
		return invErr
	}

	digest, err := key.Digest()
	if err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(c.OutOrStdout(), "invalidated %s\n", digest)
	} else {
		fmt.Fprintf(c.OutOrStdout(), "no entry for %s\n", digest)
	}

	return nil
}
