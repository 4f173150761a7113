package main

import (
	"fmt"

	"github.com/d0ngw/mobydock/app"
	"github.com/spf13/cobra"
)

var confPaths []string

var rootCmd = &cobra.Command{
	Use:   "mobydock",
	Short: "Feed Moby Dock",
	Long: `MobyDock serves a page that feeds Moby Dock: every feed picks a random
feedback message from the database and increments a counter in redis.

Examples:
  mobydock serve --conf conf/mobydock.yaml
  mobydock serve --conf conf/mobydock.yaml --conf instance.yaml
  mobydock seed --conf conf/mobydock.yaml --reset`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&confPaths, "conf", "c", nil, "YAML config file, later files override earlier ones")
}

func loadApp() (*app.App, error) {
	if len(confPaths) == 0 {
		return nil, fmt.Errorf("need --conf")
	}
	conf, err := app.LoadConfig("", confPaths...)
	if err != nil {
		return nil, fmt.Errorf("load conf fail: %w", err)
	}
	return app.New(conf)
}
