package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// GenerationJob tracks one background lesson-generation request so callers
// can poll its outcome instead of losing it to the void.
type GenerationJob struct {
	ID        uuid.UUID  `json:"job_id"`
	UserID    uuid.UUID  `json:"-"`
	Status    JobStatus  `json:"status"`
	LessonID  *uuid.UUID `json:"lesson_id,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// JobRegistry is an in-memory, mutex-guarded job table. Jobs do not
// survive a restart; the lesson itself is the durable artifact.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*GenerationJob
}

func NewJobRegistry() *JobRegistry {
	return &JobRegistry{jobs: make(map[uuid.UUID]*GenerationJob)}
}

func (r *JobRegistry) Create(userID uuid.UUID) GenerationJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := &GenerationJob{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    JobPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.jobs[job.ID] = job
	return *job
}

// Update transitions a job and returns a snapshot of the new state.
func (r *JobRegistry) Update(id uuid.UUID, status JobStatus, lessonID *uuid.UUID, errMsg string) (GenerationJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return GenerationJob{}, false
	}
	job.Status = status
	if lessonID != nil {
		job.LessonID = lessonID
	}
	job.Error = errMsg
	job.UpdatedAt = time.Now()
	return *job, true
}

func (r *JobRegistry) Get(id uuid.UUID) (GenerationJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return GenerationJob{}, false
	}
	return *job, true
}

// WorkerPool runs submitted tasks on a fixed number of goroutines, so a
// burst of generation requests cannot fan out unbounded work against the
// generative service.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	p := &WorkerPool{tasks: make(chan func(), 64)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Submit queues a task. Blocks only when the backlog buffer is full.
func (p *WorkerPool) Submit(task func()) {
	p.tasks <- task
}

// Stop drains the queue and waits for in-flight tasks.
func (p *WorkerPool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}
