package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/queue"
)

// Pool runs a fixed number of queue consumers. Each consumer dials its own
// connection so one broken connection never starves the others.
type Pool struct {
	url      string
	queue    string
	exchange string
	count    int
	worker   *Worker
	log      *zap.Logger
}

func NewPool(url, queueName, exchange string, count int, w *Worker, log *zap.Logger) *Pool {
	if count <= 0 {
		count = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		url:      url,
		queue:    queueName,
		exchange: exchange,
		count:    count,
		worker:   w,
		log:      log,
	}
}

// Run blocks until ctx is cancelled or every consumer has died. The latter
// is an error: the process should exit and let the restart policy act.
func (p *Pool) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(p.count)
	for i := 0; i < p.count; i++ {
		go func(id int) {
			defer wg.Done()
			p.consume(ctx, id+1)
		}(i)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil
	}
	return errors.New("all queue consumers stopped")
}

func (p *Pool) consume(ctx context.Context, id int) {
	conn, err := queue.Dial(p.url)
	if err != nil {
		p.log.Error("consumer failed to connect", zap.Int("consumer", id), zap.Error(err))
		return
	}
	defer conn.Close()

	client := queue.NewClient(conn, p.queue, p.exchange)
	deliveries, ch, err := client.Consume()
	if err != nil {
		p.log.Error("consumer failed to start", zap.Int("consumer", id), zap.Error(err))
		return
	}
	defer ch.Close()

	p.log.Info("consumer started", zap.Int("consumer", id), zap.String("queue", p.queue))
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				p.log.Warn("delivery channel closed", zap.Int("consumer", id))
				return
			}
			p.worker.HandleMessage(ctx, msg.Body)
		}
	}
}
