package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novavoice/nova-voice/internal/assessment"
	appconfig "github.com/novavoice/nova-voice/internal/config"
	"github.com/novavoice/nova-voice/pkg/logging"
)

const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// AssessmentStore pairs the insert path with the export path. Reader is nil
// when the backend cannot list records.
type AssessmentStore struct {
	Writer  assessment.Writer
	Reader  assessment.Reader
	Backend string
}

// BuildAssessmentStore selects the assessment backend from PERSISTENCE_BACKEND,
// falling back to memory when the selected backend has no client.
// The postgres reader is opened separately with lib/pq by the caller.
func BuildAssessmentStore(cfg *appconfig.Config, pool *pgxpool.Pool, dynamo *dynamodb.Client, logger *logging.Logger) AssessmentStore {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.PersistenceBackend {
	case BackendPostgres:
		if pool != nil {
			return AssessmentStore{Writer: assessment.NewPostgresRepository(pool), Backend: BackendPostgres}
		}
		logger.Warn("postgres backend selected without DATABASE_URL; using memory")
	case BackendDynamoDB:
		if dynamo != nil && cfg.AssessmentsTable != "" {
			return AssessmentStore{Writer: assessment.NewDynamoRepository(dynamo, cfg.AssessmentsTable), Backend: BackendDynamoDB}
		}
		logger.Warn("dynamodb backend selected without a client or table; using memory")
	case BackendMemory:
	default:
		logger.Warn("unknown persistence backend; using memory", "backend", cfg.PersistenceBackend)
	}
	repo := assessment.NewMemoryRepository()
	return AssessmentStore{Writer: repo, Reader: repo, Backend: BackendMemory}
}
