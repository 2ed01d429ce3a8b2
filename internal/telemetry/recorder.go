package telemetry

/*
Файл recorder.go — асинхронный сборщик телеметрии гейта.

Ключевые особенности архитектуры:
- Non-blocking Recording: события уходят через неблокирующий канал, задержки
  записи в БД не влияют на время ответа гейта.
- Batching: накопление в памяти и пакетная запись в PostgreSQL по таймеру
  или при достижении лимита пачки.
- Drain Pattern & Graceful Shutdown: при остановке канал закрывается, воркер
  вычитает остаток и делает финальный flush — события не теряются.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StorageInterface определяет, куда физически сохраняются события.
type StorageInterface interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

// Sink — то, что гейту нужно от телеметрии.
type Sink interface {
	Record(event Event)
}

// BufferGauge — обратная связь о заполненности буфера (backpressure).
type BufferGauge interface {
	TelemetryBufferFill(n int)
}

type Recorder struct {
	ch       chan Event
	repo     StorageInterface
	logger   *zap.Logger
	gauge    BufferGauge
	wg       sync.WaitGroup
	isClosed int32 // Атомарный флаг (0 - открыт, 1 - закрыт)

	batchSize     int
	flushInterval time.Duration
}

type Options struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	Gauge         BufferGauge
}

func NewRecorder(repo StorageInterface, logger *zap.Logger, opts Options) *Recorder {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 10000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 500 * time.Millisecond
	}
	return &Recorder{
		ch:            make(chan Event, opts.BufferSize),
		repo:          repo,
		logger:        logger.With(zap.String("mod", "telemetry")),
		gauge:         opts.Gauge,
		batchSize:     opts.BatchSize,
		flushInterval: opts.FlushInterval,
	}
}

func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (r *Recorder) Stop() {
	atomic.StoreInt32(&r.isClosed, 1)

	// Крошечная пауза, чтобы текущие Record успели проскочить
	time.Sleep(10 * time.Millisecond)

	r.logger.Info("stopping telemetry: closing channel and flushing buffer...")
	close(r.ch)
	r.wg.Wait()
	r.logger.Info("telemetry stopped gracefully")
}

func (r *Recorder) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if atomic.LoadInt32(&r.isClosed) == 1 {
		r.logger.Warn("telemetry event dropped: recorder is stopping", zap.String("id", event.ID))
		return
	}

	// Load Shedding: переполненный буфер не блокирует гейт
	select {
	case r.ch <- event:
		if r.gauge != nil {
			r.gauge.TelemetryBufferFill(len(r.ch))
		}
	default:
		r.logger.Error("telemetry_buffer_overflow",
			zap.String("type", event.Type),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	batch := make([]Event, 0, r.batchSize)
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) > 0 {
			// Background: основной контекст к этому моменту может быть закрыт
			if err := r.repo.WriteBatch(context.Background(), batch); err != nil {
				r.logger.Error("telemetry flush failed", zap.Error(err))
			}
			batch = batch[:0]
		}
	}

	for {
		select {
		case event, ok := <-r.ch:
			if !ok {
				// Канал закрыт в Stop(): вычитываем остаток и выходим
				flush()
				r.logger.Info("telemetry worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= r.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
