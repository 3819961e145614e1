package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plkumar/interprocess"
	"github.com/plkumar/interprocess/internal/logging"
)

var subscribeArgs struct {
	config string
	queue  string
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribe to a queue and print every message received, until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubscribe()
	},
}

func init() {
	subscribeCmd.Flags().StringVarP(&subscribeArgs.config, "config", "c", "", "path to a YAML config file")
	subscribeCmd.Flags().StringVar(&subscribeArgs.queue, "queue", "", "queue name (required)")
	subscribeCmd.MarkFlagRequired("queue")
}

func runSubscribe() error {
	cfg, err := LoadConfig(subscribeArgs.config)
	if err != nil {
		return err
	}

	log, _, err := logging.Init(cfg.Logging)
	if err != nil {
		return fmt.Errorf("ipqueue: initializing logging: %w", err)
	}
	defer log.Sync()

	q, err := interprocess.OpenQueue(interprocess.QueueOptions{
		QueueName: subscribeArgs.queue,
		Path:      queuePath(cfg),
		Capacity:  cfg.Capacity,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("ipqueue: opening queue %q: %w", subscribeArgs.queue, err)
	}
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		waitInterrupted(ctx)
		cancel()
	}()

	sub := q.NewSubscriber()
	defer sub.Close()

	for {
		body, err := sub.Dequeue(ctx, nil)
		if err != nil {
			if errors.Is(err, interprocess.ErrCancelled) {
				return nil
			}
			return fmt.Errorf("ipqueue: subscribing to %q: %w", subscribeArgs.queue, err)
		}
		fmt.Fprintf(os.Stdout, "%s\n", body)
	}
}
