package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/k0kubun/pp"
	"github.com/pkg/errors"

	"github.com/tsundokum/microgram"
)

type configuration struct {
	Token  string `json:"token"`
	LogDir string `json:"log_dir"`
}

func config(path string) configuration {
	var config configuration
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(errors.Wrap(err, "could not open config"))
	}
	if err := json.Unmarshal(fileBytes, &config); err != nil {
		log.Fatal(errors.Wrap(err, "could not parse config"))
	}
	return config
}

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	flag.Parse()

	cfg := config(*configPath)
	if cfg.Token == "" {
		log.Fatal("no token provided")
	}

	bot, err := microgram.New(microgram.Config{
		Token:   cfg.Token,
		LogDir:  cfg.LogDir,
		OnError: onError,
	})
	if err != nil {
		log.Fatalln(errors.Wrap(err, "could not create bot"))
	}
	defer bot.Close()

	bot.Handle(handleStatus(bot))
	bot.Handle(handleTitle(bot))
	bot.Handle(handleEcho(bot))

	log.Println("Polling for updates.")
	if err := bot.Run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

func onError(u microgram.Update, err error) {
	log.Printf("handler error: %v", err)
	pp.Fprintln(os.Stderr, u)
}
