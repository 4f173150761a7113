package main

import (
	"os"

	c "github.com/d0ngw/mobydock/common"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		c.Errorf("command fail,err:%v", err)
		c.SyncLog()
		os.Exit(1)
	}
}
