package repositories

import "context"

// Repository aggregates every repository of the service
type Repository interface {
	// Assignment graph
	Teacher() TeacherRepository
	Student() StudentRepository
	Assignment() AssignmentRepository

	// Authoring
	Test() TestRepository
	Question() QuestionRepository
	Option() OptionRepository

	// Attempts
	Result() ResultRepository

	// Read side
	Dashboard() DashboardRepository

	// Identity directory (read-only, external)
	User() UserRepository

	// WithTransaction runs fn against a Repository bound to one transaction.
	// Returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
