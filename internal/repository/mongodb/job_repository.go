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

type jobDocument struct {
	ID                bson.ObjectID          `bson:"_id,omitempty"`
	Title             string                 `bson:"title"`
	Description       string                 `bson:"job_description"`
	Location          string                 `bson:"location"`
	EmploymentType    string                 `bson:"employment_type"`
	PackagePerAnnum   string                 `bson:"package_per_annum"`
	CompanyLogoURL    string                 `bson:"company_logo_url,omitempty"`
	Rating            float64                `bson:"rating"`
	CompanyWebsiteURL string                 `bson:"company_website_url,omitempty"`
	LifeAtCompany     *lifeAtCompanyDocument `bson:"life_at_company,omitempty"`
	Skills            []skillDocument        `bson:"skills,omitempty"`
	CreatedAt         time.Time              `bson:"createdAt"`
	UpdatedAt         time.Time              `bson:"updatedAt"`
}

type lifeAtCompanyDocument struct {
	Description string `bson:"description"`
	ImageURL    string `bson:"image_url"`
}

type skillDocument struct {
	Name     string `bson:"name"`
	ImageURL string `bson:"image_url"`
}

// jobSummaryProjection limits list queries to the fields of the list view.
var jobSummaryProjection = bson.D{
	{Key: "title", Value: 1},
	{Key: "job_description", Value: 1},
	{Key: "location", Value: 1},
	{Key: "employment_type", Value: 1},
	{Key: "package_per_annum", Value: 1},
	{Key: "company_logo_url", Value: 1},
	{Key: "rating", Value: 1},
}

func newJobDocument(job *domain.Job, now time.Time) jobDocument {
	doc := jobDocument{
		ID:                bson.NewObjectID(),
		Title:             job.Title,
		Description:       job.Description,
		Location:          job.Location,
		EmploymentType:    job.EmploymentType,
		PackagePerAnnum:   job.PackagePerAnnum,
		CompanyLogoURL:    job.CompanyLogoURL,
		Rating:            job.Rating,
		CompanyWebsiteURL: job.CompanyWebsiteURL,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if job.LifeAtCompany != nil {
		doc.LifeAtCompany = &lifeAtCompanyDocument{
			Description: job.LifeAtCompany.Description,
			ImageURL:    job.LifeAtCompany.ImageURL,
		}
	}
	for _, s := range job.Skills {
		doc.Skills = append(doc.Skills, skillDocument{Name: s.Name, ImageURL: s.ImageURL})
	}
	return doc
}

func (d jobDocument) toDomain() domain.Job {
	job := domain.Job{
		ID:                d.ID.Hex(),
		Title:             d.Title,
		Description:       d.Description,
		Location:          d.Location,
		EmploymentType:    d.EmploymentType,
		PackagePerAnnum:   d.PackagePerAnnum,
		CompanyLogoURL:    d.CompanyLogoURL,
		Rating:            d.Rating,
		CompanyWebsiteURL: d.CompanyWebsiteURL,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.LifeAtCompany != nil {
		job.LifeAtCompany = &domain.LifeAtCompany{
			Description: d.LifeAtCompany.Description,
			ImageURL:    d.LifeAtCompany.ImageURL,
		}
	}
	if len(d.Skills) > 0 {
		job.Skills = make([]domain.Skill, len(d.Skills))
		for i, s := range d.Skills {
			job.Skills[i] = domain.Skill{Name: s.Name, ImageURL: s.ImageURL}
		}
	}
	return job
}

type JobRepository struct {
	coll *mongo.Collection
}

func NewJobRepository(db *mongo.Database) repository.JobRepository {
	return &JobRepository{coll: db.Collection(jobsCollection)}
}

func (r *JobRepository) Init(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("created_at"),
	})
	if err != nil {
		return fmt.Errorf("create job indexes: %w", err)
	}
	return nil
}

// CreateMany runs an ordered insert. The driver stops at the first failed
// document, so documents before it stay persisted.
func (r *JobRepository) CreateMany(ctx context.Context, jobs []*domain.Job) error {
	now := time.Now().UTC()
	docs := make([]jobDocument, len(jobs))
	for i, job := range jobs {
		docs[i] = newJobDocument(job, now)
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return translateError("insert jobs", err)
	}

	for i, job := range jobs {
		job.ID = docs[i].ID.Hex()
		job.CreatedAt = now
		job.UpdatedAt = now
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*domain.Job, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc jobDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateError("find job", err)
	}
	job := doc.toDomain()
	return &job, nil
}

func (r *JobRepository) ListSummaries(ctx context.Context) ([]domain.Job, error) {
	opts := options.Find().
		SetProjection(jobSummaryProjection).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	var docs []jobDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	jobs := make([]domain.Job, len(docs))
	for i := range docs {
		jobs[i] = docs[i].toDomain()
	}
	return jobs, nil
}

func (r *JobRepository) UpdateLogoURL(ctx context.Context, id, logoURL string) (*domain.Job, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"company_logo_url": logoURL,
		"updatedAt":        time.Now().UTC(),
	}}
	var doc jobDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translateError("update job logo", err)
	}
	job := doc.toDomain()
	return &job, nil
}

func (r *JobRepository) Delete(ctx context.Context, id string) (*domain.Job, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc jobDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateError("delete job", err)
	}
	job := doc.toDomain()
	return &job, nil
}

func (r *JobRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete jobs: %w", err)
	}
	return res.DeletedCount, nil
}
