package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"threaded_comments/internal/pkg/mailer"
	"threaded_comments/pkg/metrics"

	"go.uber.org/zap"
)

// ErrQueueFull 队列已满或已停止
var ErrQueueFull = errors.New("mail queue is full")

type MailTask struct {
	Message mailer.Message
	Retry   int // 重试次数
}

// Enqueuer 业务侧只需要投递
type Enqueuer interface {
	AddTask(msg mailer.Message) error
}

type WorkerPool struct {
	TaskQueue  chan MailTask
	RetryQueue chan MailTask // 重试队列
	Sender     mailer.Sender
	WorkerNum  int
	MaxRetry   int           // 最大重试次数
	RetryDelay time.Duration // 第 n 次重试等待 n*RetryDelay
	Timeout    time.Duration // 单封邮件发送超时

	log     *zap.Logger
	metrics *metrics.MetricsCollector
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewWorkerPool(sender mailer.Sender, workerNum, bufferSize int, log *zap.Logger, collector *metrics.MetricsCollector) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize <= 1 {
		bufferSize = 2
	}
	return &WorkerPool{
		TaskQueue:  make(chan MailTask, bufferSize),
		RetryQueue: make(chan MailTask, bufferSize/2),
		Sender:     sender,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
		RetryDelay: time.Second,
		Timeout:    30 * time.Second,
		log:        log,
		metrics:    collector,
		done:       make(chan struct{}),
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker()
	p.log.Info("Mail worker pool started", zap.Int("workers", p.WorkerNum))
}

// Stop 停止接收新任务并等待正在发送的邮件结束，队列中未处理的任务被丢弃
func (p *WorkerPool) Stop() {
	p.once.Do(func() {
		close(p.done)
		p.wg.Wait()
		if n := len(p.TaskQueue) + len(p.RetryQueue); n > 0 {
			p.log.Warn("Mail worker pool stopped with pending tasks", zap.Int("pending", n))
		}
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case task := <-p.TaskQueue:
			p.handle(id, task)
		}
	}
}

func (p *WorkerPool) handle(id int, task MailTask) {
	err := p.processTask(task)
	if err == nil {
		p.record("sent")
		return
	}

	fields := []zap.Field{
		zap.Int("worker", id),
		zap.String("to", task.Message.To),
		zap.Int("attempt", task.Retry+1),
		zap.Error(err),
	}

	// 如果未达到最大重试次数，加入重试队列
	if task.Retry < p.MaxRetry {
		task.Retry++
		select {
		case p.RetryQueue <- task:
			p.record("retry")
			p.log.Warn("Mail delivery failed, scheduled for retry", fields...)
			return
		default:
			p.log.Error("Retry queue full, mail dropped", fields...)
		}
	} else {
		p.log.Error("Mail exceeded max retries, dropped", fields...)
	}
	p.record("failed")
}

func (p *WorkerPool) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			select {
			case <-time.After(time.Duration(task.Retry) * p.RetryDelay):
			case <-p.done:
				return
			}

			// 重新加入主队列
			select {
			case p.TaskQueue <- task:
			default:
				p.log.Error("Main queue full, retried mail dropped", zap.String("to", task.Message.To))
				p.record("failed")
			}
		}
	}
}

func (p *WorkerPool) processTask(task MailTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()
	return p.Sender.Send(ctx, task.Message)
}

func (p *WorkerPool) record(status string) {
	if p.metrics != nil {
		p.metrics.RecordMail(status)
	}
}

// AddTask 非阻塞投递
func (p *WorkerPool) AddTask(msg mailer.Message) error {
	select {
	case <-p.done:
		return ErrQueueFull
	default:
	}

	select {
	case p.TaskQueue <- MailTask{Message: msg}:
		return nil
	default:
		p.log.Error("Mail queue full, dropping task", zap.String("to", msg.To))
		p.record("failed")
		return ErrQueueFull
	}
}
