package domain

const (
	// DefaultPrefetchCount is used when rabbitmq.consumer.prefetch_count is unset
	DefaultPrefetchCount = 10

	// ConsumerTagPrefix prefixes generated consumer tags
	ConsumerTagPrefix = "petstore-worker"
)
