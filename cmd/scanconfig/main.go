package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	VERSION = "dev"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
