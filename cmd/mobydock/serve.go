package main

import (
	c "github.com/d0ngw/mobydock/common"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the http server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err = a.Init(); err != nil {
		a.Stop()
		return err
	}
	if err = a.Start(); err != nil {
		a.Stop()
		return err
	}
	c.Infof("mobydock is serving at %s", a.HTTP.Addr())

	hook := c.NewShutdownhook()
	hook.AddHook(func() {
		if err := a.Stop(); err != nil {
			c.Errorf("stop fail,err:%v", err)
		}
	})
	hook.WaitShutdown()
	return nil
}
