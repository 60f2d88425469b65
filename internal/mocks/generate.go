// Package mocks provides gomock implementations of the ports in internal/core.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	apps := mocks.NewMockApplicationRepository(ctrl)
//	apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(app, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/target/hiring-pipeline/internal/core JobRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=question_repository_mock.go github.com/target/hiring-pipeline/internal/core QuestionRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=assessment_repository_mock.go github.com/target/hiring-pipeline/internal/core AssessmentRepository

// Optimistic-concurrency store: Get, Create, Save(app, expectedVersion).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=application_repository_mock.go github.com/target/hiring-pipeline/internal/core ApplicationRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=catalog_reader_mock.go github.com/target/hiring-pipeline/internal/core CatalogReader
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_emitter_mock.go github.com/target/hiring-pipeline/internal/core EventEmitter
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/hiring-pipeline/internal/core CacheRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=clock_mock.go github.com/target/hiring-pipeline/internal/core Clock
