package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jobby-api/internal/domain"
	"jobby-api/internal/repository"
)

type feedbackDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Username  string        `bson:"username"`
	Email     string        `bson:"email,omitempty"`
	Message   string        `bson:"message"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d feedbackDocument) toDomain() domain.Feedback {
	return domain.Feedback{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type FeedbackRepository struct {
	coll *mongo.Collection
}

func NewFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &FeedbackRepository{coll: db.Collection(feedbackCollection)}
}

func (r *FeedbackRepository) Init(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("created_at_desc"),
	})
	if err != nil {
		return fmt.Errorf("create feedback indexes: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) (string, error) {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	doc := feedbackDocument{
		ID:        bson.NewObjectID(),
		Username:  feedback.Username,
		Email:     feedback.Email,
		Message:   feedback.Message,
		CreatedAt: feedback.CreatedAt,
		UpdatedAt: feedback.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", translateError("insert feedback", err)
	}
	feedback.ID = doc.ID.Hex()
	feedback.UpdatedAt = doc.UpdatedAt
	return feedback.ID, nil
}

func (r *FeedbackRepository) Get(ctx context.Context, id string) (*domain.Feedback, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc feedbackDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateError("find feedback", err)
	}
	fb := doc.toDomain()
	return &fb, nil
}

func (r *FeedbackRepository) List(ctx context.Context) ([]domain.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	var docs []feedbackDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}

	out := make([]domain.Feedback, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *FeedbackRepository) Update(ctx context.Context, id string, update domain.FeedbackUpdate) (*domain.Feedback, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Message != nil {
		set["message"] = *update.Message
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}

	var doc feedbackDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translateError("update feedback", err)
	}
	fb := doc.toDomain()
	return &fb, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) (*domain.Feedback, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc feedbackDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateError("delete feedback", err)
	}
	fb := doc.toDomain()
	return &fb, nil
}

func (r *FeedbackRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete feedback: %w", err)
	}
	return res.DeletedCount, nil
}
