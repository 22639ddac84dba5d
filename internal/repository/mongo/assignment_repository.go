package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/repository"
)

type assignmentDocument struct {
	ID          int64     `bson:"id"`
	Nom         string    `bson:"nom"`
	DateDeRendu time.Time `bson:"dateDeRendu"`
	Rendu       bool      `bson:"rendu"`
}

func (d assignmentDocument) model() models.Assignment {
	return models.Assignment{
		ID:          d.ID,
		Nom:         d.Nom,
		DateDeRendu: d.DateDeRendu,
		Rendu:       d.Rendu,
	}
}

func byAssignmentID(id int64) bson.D {
	return bson.D{{Key: "id", Value: id}}
}

func (s *Store) CreateAssignment(ctx context.Context, a models.Assignment) error {
	doc := assignmentDocument{
		ID:          a.ID,
		Nom:         a.Nom,
		DateDeRendu: a.DateDeRendu,
		Rendu:       a.Rendu,
	}
	if _, err := s.assignments.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	var doc assignmentDocument
	err := s.assignments.FindOne(ctx, byAssignmentID(id)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	a := doc.model()
	return &a, nil
}

// assignmentFilter translates f into a query document. A missing rendu field
// counts as false and a missing due date as overdue, the same way decoding
// such a document into Assignment classifies it.
func assignmentFilter(f models.AssignmentFilter) bson.D {
	filter := bson.D{}

	if f.Search != "" {
		filter = append(filter, bson.E{Key: "nom", Value: bson.Regex{
			Pattern: regexp.QuoteMeta(f.Search),
			Options: "i",
		}})
	}

	notRendu := bson.E{Key: "rendu", Value: bson.D{{Key: "$ne", Value: true}}}
	switch f.Status {
	case models.StatusPending:
		filter = append(filter,
			notRendu,
			bson.E{Key: "dateDeRendu", Value: bson.D{{Key: "$gte", Value: f.Now}}},
		)
	case models.StatusOverdue:
		filter = append(filter,
			notRendu,
			bson.E{Key: "$or", Value: bson.A{
				bson.D{{Key: "dateDeRendu", Value: bson.D{{Key: "$lt", Value: f.Now}}}},
				bson.D{{Key: "dateDeRendu", Value: nil}},
			}},
		)
	case models.StatusCompleted:
		filter = append(filter, bson.E{Key: "rendu", Value: true})
	}

	return filter
}

// listPipeline matches f and returns one page plus the total match count in a
// single $facet result.
func listPipeline(f models.AssignmentFilter, p models.PageRequest) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: assignmentFilter(f)}},
		{{Key: "$facet", Value: bson.D{
			{Key: "docs", Value: bson.A{
				bson.D{{Key: "$skip", Value: p.Offset()}},
				bson.D{{Key: "$limit", Value: int64(p.Limit)}},
			}},
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$count", Value: "n"}},
			}},
		}}},
	}
}

func (s *Store) ListAssignments(ctx context.Context, f models.AssignmentFilter, p models.PageRequest) ([]models.Assignment, int64, error) {
	p = p.Normalize()

	cursor, err := s.assignments.Aggregate(ctx, listPipeline(f, p))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}

	var result []struct {
		Docs  []assignmentDocument `bson:"docs"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, 0, fmt.Errorf("failed to decode assignments: %w", err)
	}

	docs := []models.Assignment{}
	var total int64
	if len(result) > 0 {
		for _, d := range result[0].Docs {
			docs = append(docs, d.model())
		}
		if len(result[0].Total) > 0 {
			total = result[0].Total[0].N
		}
	}
	return docs, total, nil
}

func (s *Store) AssignmentStats(ctx context.Context, now time.Time) (models.AssignmentStats, error) {
	var stats models.AssignmentStats

	projection := bson.D{{Key: "rendu", Value: 1}, {Key: "dateDeRendu", Value: 1}}
	cursor, err := s.assignments.Find(ctx, bson.D{}, options.Find().SetProjection(projection))
	if err != nil {
		return stats, fmt.Errorf("failed to scan assignments: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc assignmentDocument
		if err := cursor.Decode(&doc); err != nil {
			return models.AssignmentStats{}, fmt.Errorf("failed to decode assignment: %w", err)
		}
		stats.Add(doc.model(), now)
	}
	if err := cursor.Err(); err != nil {
		return models.AssignmentStats{}, fmt.Errorf("failed to scan assignments: %w", err)
	}
	return stats, nil
}

func assignmentSet(upd models.AssignmentUpdate) bson.D {
	set := bson.D{}
	if upd.ID != nil {
		set = append(set, bson.E{Key: "id", Value: *upd.ID})
	}
	if upd.Nom != nil {
		set = append(set, bson.E{Key: "nom", Value: *upd.Nom})
	}
	if upd.DateDeRendu != nil {
		set = append(set, bson.E{Key: "dateDeRendu", Value: *upd.DateDeRendu})
	}
	if upd.Rendu != nil {
		set = append(set, bson.E{Key: "rendu", Value: *upd.Rendu})
	}
	return set
}

func (s *Store) UpdateAssignment(ctx context.Context, id int64, upd models.AssignmentUpdate) error {
	if upd.Empty() {
		n, err := s.assignments.CountDocuments(ctx, byAssignmentID(id), options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to find assignment: %w", err)
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return nil
	}

	res, err := s.assignments.UpdateOne(ctx, byAssignmentID(id), bson.D{{Key: "$set", Value: assignmentSet(upd)}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAssignment(ctx context.Context, id int64) error {
	res, err := s.assignments.DeleteOne(ctx, byAssignmentID(id))
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
