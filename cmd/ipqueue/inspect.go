package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plkumar/interprocess"
	"github.com/plkumar/interprocess/internal/logging"
)

var inspectArgs struct {
	config string
	queue  string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a queue's head/tail offsets and approximate occupancy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect()
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectArgs.config, "config", "c", "", "path to a YAML config file")
	inspectCmd.Flags().StringVar(&inspectArgs.queue, "queue", "", "queue name (required)")
	inspectCmd.MarkFlagRequired("queue")
}

func runInspect() error {
	cfg, err := LoadConfig(inspectArgs.config)
	if err != nil {
		return err
	}

	log, _, err := logging.Init(cfg.Logging)
	if err != nil {
		return fmt.Errorf("ipqueue: initializing logging: %w", err)
	}
	defer log.Sync()

	q, err := interprocess.OpenQueue(interprocess.QueueOptions{
		QueueName: inspectArgs.queue,
		Path:      queuePath(cfg),
		Capacity:  cfg.Capacity,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("ipqueue: opening queue %q: %w", inspectArgs.queue, err)
	}
	defer q.Close()

	s := q.Stats()
	fmt.Fprintf(os.Stdout, "queue:    %s\n", inspectArgs.queue)
	fmt.Fprintf(os.Stdout, "head:     %d\n", s.HeadOffset)
	fmt.Fprintf(os.Stdout, "tail:     %d\n", s.TailOffset)
	fmt.Fprintf(os.Stdout, "capacity: %d\n", s.Capacity)
	fmt.Fprintf(os.Stdout, "occupied: %d (%.1f%%)\n", s.Occupied, 100*float64(s.Occupied)/float64(s.Capacity))
	return nil
}
