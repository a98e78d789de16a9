package domain

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/petstore/internal/jobs"
)

// JobMessage is a decoded delivery handed to the worker pool
type JobMessage struct {
	jobs.Message
	Delivery amqp.Delivery
}
