package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plkumar/interprocess"
	"github.com/plkumar/interprocess/internal/logging"
)

var publishArgs struct {
	config string
	queue  string
}

var publishCmd = &cobra.Command{
	Use:   "publish <message...>",
	Short: "Publish one message to a queue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublish(strings.Join(args, " "))
	},
}

func init() {
	publishCmd.Flags().StringVarP(&publishArgs.config, "config", "c", "", "path to a YAML config file")
	publishCmd.Flags().StringVar(&publishArgs.queue, "queue", "", "queue name (required)")
	publishCmd.MarkFlagRequired("queue")
}

func runPublish(body string) error {
	cfg, err := LoadConfig(publishArgs.config)
	if err != nil {
		return err
	}

	log, _, err := logging.Init(cfg.Logging)
	if err != nil {
		return fmt.Errorf("ipqueue: initializing logging: %w", err)
	}
	defer log.Sync()

	q, err := interprocess.OpenQueue(interprocess.QueueOptions{
		QueueName: publishArgs.queue,
		Path:      queuePath(cfg),
		Capacity:  cfg.Capacity,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("ipqueue: opening queue %q: %w", publishArgs.queue, err)
	}
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		waitInterrupted(ctx)
		cancel()
	}()

	pub := q.NewPublisher()
	if err := pub.Enqueue(ctx, []byte(body)); err != nil {
		return fmt.Errorf("ipqueue: publishing to %q: %w", publishArgs.queue, err)
	}

	fmt.Fprintf(os.Stdout, "published %d bytes to %q\n", len(body), publishArgs.queue)
	return nil
}
