package execution

// Scheduler distributes jobs across workers
type Scheduler interface {
	Schedule(jobs []Job, workerCount int) [][]Job
}

// RoundRobinScheduler distributes jobs evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes jobs evenly across workers using round-robin
func (s *RoundRobinScheduler) Schedule(jobs []Job, workerCount int) [][]Job {
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(jobs) && len(jobs) > 0 {
		workerCount = len(jobs)
	}

	distribution := make([][]Job, workerCount)
	for i := range distribution {
		distribution[i] = make([]Job, 0)
	}

	for i, job := range jobs {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], job)
	}

	return distribution
}
