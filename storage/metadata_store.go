package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	edgar "github.com/secfilings/go-edgar-pipeline"
)

// DataIntegrityDoc is the nested data_integrity record stored alongside a
// filing document, recording the fiscal-period fallback (if any) that
// produced the document's fiscal_year/fiscal_period fields.
type DataIntegrityDoc struct {
	ValidationSource string    `bson:"validation_source"`
	FallbackUsed     string    `bson:"fallback_used,omitempty"`
	Timestamp        time.Time `bson:"timestamp"`
}

// MetadataRecord is the full "filings" collection document shape.
type MetadataRecord struct {
	FilingID                string                   `bson:"filing_id"`
	CompanyTicker           string                   `bson:"company_ticker"`
	CompanyName             string                   `bson:"company_name"`
	FilingType              string                   `bson:"filing_type"`
	FiscalYear              string                   `bson:"fiscal_year"`
	FiscalPeriod            string                   `bson:"fiscal_period"`
	DisplayPeriod           string                   `bson:"display_period"`
	PeriodEndDate           string                   `bson:"period_end_date"`
	PeriodEndDateRaw        string                   `bson:"period_end_date_raw"`
	FilingDate              string                   `bson:"filing_date"`
	TextFilePath            string                   `bson:"text_file_path"`
	TextFileSize            int                      `bson:"text_file_size"`
	TextTokenCount          int                      `bson:"text_token_count"`
	LLMFilePath             string                   `bson:"llm_file_path"`
	LLMFileSize             int                      `bson:"llm_file_size"`
	LLMTokenCount           int                      `bson:"llm_token_count"`
	HasLLMFormat            bool                     `bson:"has_llm_format"`
	FiscalSource            string                   `bson:"fiscal_source"`
	FiscalIntegrityVerified bool                     `bson:"fiscal_integrity_verified"`
	DataIntegrity           DataIntegrityDoc         `bson:"data_integrity"`
	UploadDate              time.Time                `bson:"upload_date"`
	LastAccessed            time.Time                `bson:"last_accessed"`
	AccessCount             int                      `bson:"access_count"`
	Financials              *edgar.FinancialSnapshot `bson:"financials,omitempty"`
}

// MetadataUpserter is the document-store dependency Publish needs.
type MetadataUpserter interface {
	Upsert(ctx context.Context, rec MetadataRecord) error
}

// MongoMetadataStore is the production MetadataUpserter, backed by the
// "filings" collection of a Mongo database.
type MongoMetadataStore struct {
	collection *mongo.Collection
}

// NewMongoMetadataStore connects to uri and binds to database.filings.
func NewMongoMetadataStore(ctx context.Context, uri, database string) (*MongoMetadataStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoMetadataStore{collection: client.Database(database).Collection("filings")}, nil
}

// Upsert writes rec keyed by filing_id, creating the document on first
// publish and replacing every field on republish — a filing reprocessed
// with the same canonical id always converges to the same row rather than
// accumulating duplicates.
func (m *MongoMetadataStore) Upsert(ctx context.Context, rec MetadataRecord) error {
	filter := bson.M{"filing_id": rec.FilingID}
	update := bson.M{"$set": rec}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return &edgar.StorageError{Op: "metadata_upsert", Key: rec.FilingID, Err: err}
	}
	return nil
}
