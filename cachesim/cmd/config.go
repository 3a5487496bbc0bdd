package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// The environment variables that override the default cache parameters.
const (
	envBlockCount    = "CACHESIM_BLOCK_COUNT"
	envLog2BlockSize = "CACHESIM_LOG2_BLOCK_SIZE"
	envGroupSize     = "CACHESIM_GROUP_SIZE"
	envAlignLog2     = "CACHESIM_ALIGN_LOG2"
)

type lookupFunc func(key string) (string, bool)

type cacheConfig struct {
	blockCount    int
	log2BlockSize int
	groupSize     int
	alignLog2     int
}

func defaultCacheConfig() cacheConfig {
	return cacheConfig{
		blockCount:    512,
		log2BlockSize: 6,
		groupSize:     4,
		alignLog2:     2,
	}
}

// loadEnvFile loads the variables of a .env file. Variables that are already
// set are not overwritten. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

type intSetting struct {
	flag  string
	env   string
	value *int
}

func (c *cacheConfig) settings() []intSetting {
	return []intSetting{
		{flag: "block-count", env: envBlockCount, value: &c.blockCount},
		{flag: "log2-block-size", env: envLog2BlockSize, value: &c.log2BlockSize},
		{flag: "group-size", env: envGroupSize, value: &c.groupSize},
		{flag: "align-log2", env: envAlignLog2, value: &c.alignLog2},
	}
}

func addCacheFlags(cmd *cobra.Command) {
	c := defaultCacheConfig()
	flags := cmd.Flags()

	flags.IntP("block-count", "n", c.blockCount,
		"Number of blocks in each cache [$"+envBlockCount+"]")
	flags.IntP("log2-block-size", "b", c.log2BlockSize,
		"Log2 of the block size in bytes [$"+envLog2BlockSize+"]")
	flags.IntP("group-size", "a", c.groupSize,
		"Associativity of the set-associative cache [$"+envGroupSize+"]")
	flags.Int("align-log2", c.alignLog2,
		"Clear this many low address bits before the lookup [$"+envAlignLog2+"]")
}

// resolveCacheConfig starts from the defaults, applies the environment, and
// then the flags given on the command line.
func resolveCacheConfig(cmd *cobra.Command, lookup lookupFunc) (
	cacheConfig, error,
) {
	c := defaultCacheConfig()

	for _, s := range c.settings() {
		if cmd.Flags().Changed(s.flag) {
			v, err := cmd.Flags().GetInt(s.flag)
			if err != nil {
				return c, err
			}

			*s.value = v

			continue
		}

		str, ok := lookup(s.env)
		if !ok || str == "" {
			continue
		}

		v, err := strconv.Atoi(str)
		if err != nil {
			return c, fmt.Errorf("invalid %s %q: %w", s.env, str, err)
		}

		*s.value = v
	}

	return c, nil
}
