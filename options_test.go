package interprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    QueueOptions
		wantErr string
	}{
		{"empty name", QueueOptions{QueueName: "", Capacity: 8}, "QueueName"},
		{"zero capacity", QueueOptions{QueueName: "q", Capacity: 0}, "Capacity"},
		{"negative capacity", QueueOptions{QueueName: "q", Capacity: -8}, "Capacity"},
		{"unaligned capacity", QueueOptions{QueueName: "q", Capacity: 10}, "Capacity"},
		{"valid", QueueOptions{QueueName: "q", Capacity: 8}, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.opts.Validate()
			if c.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var invalid *InvalidOptionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, c.wantErr, invalid.Field)
		})
	}
}

func TestQueueOptions_BytesCapacity(t *testing.T) {
	opts := QueueOptions{QueueName: "q", Capacity: 128}
	assert.Equal(t, int64(24+128), opts.BytesCapacity())
}
