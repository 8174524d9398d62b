package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/culturecart/accounts-api/internal/core/domain"
	"github.com/culturecart/accounts-api/internal/core/ports"
)

const sessionsCollection = "sessions"

var _ ports.SessionRepository = (*SessionRepository)(nil)

// SessionRepository implements ports.SessionRepository using MongoDB.
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionsCollection)}
}

type sessionDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Type      string             `bson:"type"`
	UserAgent string             `bson:"user_agent,omitempty"`
	IP        string             `bson:"ip,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	Owner     *userDoc           `bson:"owner,omitempty"`
}

func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *SessionRepository) Insert(ctx context.Context, session *domain.Session) error {
	userID, err := primitive.ObjectIDFromHex(session.UserID)
	if err != nil {
		return fmt.Errorf("insert session: invalid user id %q", session.UserID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := sessionDoc{
		UserID:    userID,
		Type:      string(session.Type),
		UserAgent: session.UserAgent,
		IP:        session.IP,
		CreatedAt: session.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

// Recent returns the newest limit sessions joined with their owner. Sessions
// whose user was removed keep a nil owner.
func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]domain.SessionView, error) {
	if limit <= 0 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "owner.password_hash", Value: 0}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []sessionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}

	views := make([]domain.SessionView, 0, len(docs))
	for _, d := range docs {
		view := domain.SessionView{Session: domain.Session{
			ID:        d.ID.Hex(),
			UserID:    d.UserID.Hex(),
			Type:      domain.SessionType(d.Type),
			UserAgent: d.UserAgent,
			IP:        d.IP,
			CreatedAt: d.CreatedAt.UTC(),
		}}
		if d.Owner != nil {
			view.User = &domain.SessionOwner{
				ID:       d.Owner.ID.Hex(),
				Username: d.Owner.Username,
				Email:    d.Owner.Email,
				Role:     domain.Role(d.Owner.Role),
			}
		}
		views = append(views, view)
	}
	return views, nil
}
