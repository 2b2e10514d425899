package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"aegis/core"
)

// CaseCursor interface for mocking
type CaseCursor interface {
	All(ctx context.Context, results interface{}) error
	Close(ctx context.Context) error
	Err() error
	Next(ctx context.Context) bool
	Decode(v interface{}) error
}

// CaseSingleResult interface for mocking
type CaseSingleResult interface {
	Decode(v interface{}) error
	Err() error
}

// CaseCollection interface for mocking
type CaseCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CaseCursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) CaseSingleResult
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// mongoCaseCursor adapts *mongo.Cursor to CaseCursor
type mongoCaseCursor struct {
	*mongo.Cursor
}

func (m *mongoCaseCursor) All(ctx context.Context, results interface{}) error {
	return m.Cursor.All(ctx, results)
}

func (m *mongoCaseCursor) Close(ctx context.Context) error {
	return m.Cursor.Close(ctx)
}

func (m *mongoCaseCursor) Err() error {
	return m.Cursor.Err()
}

func (m *mongoCaseCursor) Next(ctx context.Context) bool {
	return m.Cursor.Next(ctx)
}

func (m *mongoCaseCursor) Decode(v interface{}) error {
	return m.Cursor.Decode(v)
}

// mongoCaseCollection adapts *mongo.Collection to CaseCollection
type mongoCaseCollection struct {
	*mongo.Collection
}

func (m *mongoCaseCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (CaseCursor, error) {
	cursor, err := m.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCaseCursor{Cursor: cursor}, nil
}

func (m *mongoCaseCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) CaseSingleResult {
	return m.Collection.FindOne(ctx, filter, opts...)
}

// MongoDB holds the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB creates a new MongoDB connection
func NewMongoDB(uri, dbName string, maxPoolSize uint64, logger *zap.SugaredLogger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).SetMaxPoolSize(maxPoolSize)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB successfully")

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// HealthCheck performs a health check on the MongoDB connection
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// CaseStore persists case files and alerts in the external case management
// database and pushes notes and state changes back to it.
type CaseStore struct {
	CasesColl  CaseCollection
	AlertsColl CaseCollection
	logger     *zap.SugaredLogger
}

// NewCaseStore creates a case store over a MongoDB connection
func NewCaseStore(db *MongoDB, logger *zap.SugaredLogger) *CaseStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CaseStore{
		CasesColl:  &mongoCaseCollection{Collection: db.Database.Collection("cases")},
		AlertsColl: &mongoCaseCollection{Collection: db.Database.Collection("alerts")},
		logger:     logger,
	}
}

// SaveCase upserts a case file keyed by its UUID
func (s *CaseStore) SaveCase(ctx context.Context, cf *core.CaseFile) error {
	filter := bson.M{"uuid": cf.CaseUUID}
	update := bson.M{"$set": cf}
	opts := options.Update().SetUpsert(true)

	if _, err := s.CasesColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save case %s: %w", cf.CaseUUID, err)
	}
	return nil
}

// GetCase fetches a case file by UUID
func (s *CaseStore) GetCase(ctx context.Context, caseUUID string) (*core.CaseFile, error) {
	result := s.CasesColl.FindOne(ctx, bson.M{"uuid": caseUUID})
	if err := result.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch case %s: %w", caseUUID, err)
	}

	var cf core.CaseFile
	if err := result.Decode(&cf); err != nil {
		return nil, fmt.Errorf("failed to decode case %s: %w", caseUUID, err)
	}
	return &cf, nil
}

// AddCaseNote pushes a note onto the external case record
func (s *CaseStore) AddCaseNote(ctx context.Context, caseNumber int, note core.CaseNote) error {
	if caseNumber == 0 {
		return ErrNoCaseNumber
	}
	filter := bson.M{"case_number": caseNumber}
	update := bson.M{"$push": bson.M{"notes": note}}

	result, err := s.CasesColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add note to case %d: %w", caseNumber, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("case %d: %w", caseNumber, ErrNotFound)
	}
	return nil
}

// SaveAlert upserts an alert keyed by its UUID
func (s *CaseStore) SaveAlert(ctx context.Context, alert *core.Alert) error {
	filter := bson.M{"uuid": alert.AlertUUID}
	update := bson.M{"$set": alert}
	opts := options.Update().SetUpsert(true)

	if _, err := s.AlertsColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save alert %s: %w", alert.AlertUUID, err)
	}
	return nil
}

// OpenAlerts returns alerts in state new or pending, oldest first
func (s *CaseStore) OpenAlerts(ctx context.Context) ([]*core.Alert, error) {
	filter := bson.M{"state": bson.M{"$in": []core.AlertState{core.AlertStateNew, core.AlertStatePending}}}
	opts := options.Find().SetSort(bson.M{"timestamp": 1})

	cursor, err := s.AlertsColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query open alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []*core.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode open alerts: %w", err)
	}
	return alerts, nil
}

// UpdateAlertState sets the state of one alert
func (s *CaseStore) UpdateAlertState(ctx context.Context, alertUUID string, state core.AlertState) error {
	if !state.IsValid() {
		return fmt.Errorf("invalid alert state %q", state)
	}
	filter := bson.M{"uuid": alertUUID}
	update := bson.M{"$set": bson.M{"state": state}}

	result, err := s.AlertsColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update state of alert %s: %w", alertUUID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("alert %s: %w", alertUUID, ErrNotFound)
	}
	return nil
}
