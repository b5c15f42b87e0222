// Command cinegenre prepares film plot corpora, trains and compares genre
// classifiers, and serves predictions from the selected champion.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
