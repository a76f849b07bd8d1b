package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/neural-trinity/chatverse/internal/animation"
	"github.com/neural-trinity/chatverse/internal/client"
	"github.com/neural-trinity/chatverse/internal/store"
	"go.uber.org/zap"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8100", "chat server base URL")
	dbPath := flag.String("db", "chatverse-client.db", "path to the local chat history database")
	manimURL := flag.String("manim", "", "rendering service base URL (defaults to the public tunnel)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := godotenv.Load(); err == nil {
		logger.Info("loaded .env")
	}

	kv, err := store.NewSQLiteKV(*dbPath)
	if err != nil {
		logger.Fatal("failed to open chat history database",
			zap.Error(err),
			zap.String("dbPath", *dbPath))
	}
	defer kv.Close()

	st := store.New(kv, logger)
	session := client.NewSession(*serverURL, st, logger)
	session.OnFragment = func(fragment string) {
		fmt.Print(fragment)
	}
	anim := animation.NewClient(*manimURL, logger)

	fmt.Println("ChatVerse terminal client. Commands: /new /list /load <id> /anim <prompt> /quit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/new":
			session.Reset()
			fmt.Println("Started a new chat.")
		case line == "/list":
			for _, group := range st.Groups() {
				fmt.Printf("%s\n", group.Label)
				for _, conv := range group.Conversations {
					fmt.Printf("  %s  %s - %s\n", conv.ID, conv.Title, conv.Preview)
				}
			}
		case strings.HasPrefix(line, "/load "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/load "))
			if !session.LoadChat(id) {
				fmt.Printf("No chat with id %s\n", id)
				continue
			}
			for _, m := range session.Messages() {
				fmt.Printf("[%s] %s\n", m.Sender, m.Text)
			}
		case strings.HasPrefix(line, "/anim "):
			prompt := strings.TrimSpace(strings.TrimPrefix(line, "/anim "))
			runAnimation(anim, prompt)
		default:
			if err := session.Send(context.Background(), line); err != nil {
				fmt.Printf("\n%v\n", err)
			}
			fmt.Println()
		}
	}
}

func runAnimation(anim *animation.Client, prompt string) {
	ctx := context.Background()

	job, err := anim.Generate(ctx, prompt, 0)
	if err != nil {
		fmt.Printf("Failed to submit animation: %v\n", err)
		return
	}
	fmt.Printf("Submitted job %s, waiting for the render...\n", job.JobID)

	videoURL, err := anim.Poll(ctx, job.JobID, 0, 0)
	if err != nil {
		fmt.Printf("Animation failed: %v\n", err)
		return
	}
	fmt.Printf("Video ready: %s\n", videoURL)
}
