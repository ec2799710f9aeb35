// Package storage provides Store implementations over the external document
// store. The Mongo store is the production backend; the memory store backs
// tests and offline demos.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/felixgeelhaar/pulse/pkg/domain"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// activeProjectStatuses are the statuses the portfolio treats as running.
var activeProjectStatuses = []string{"ongoing", "active", "in_progress"}

// MongoStore is a read-only view over the project-management database. It is
// safe for concurrent use; the underlying client pools connections.
type MongoStore struct {
	db *mongo.Database
}

// ConnectMongo dials the store and verifies the connection. The URI must
// carry a database name.
func ConnectMongo(ctx context.Context, uri string) (*MongoStore, error) {
	dbName, err := databaseName(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping store: %w", err)
	}
	return &MongoStore{db: client.Database(dbName)}, nil
}

// NewMongoStore wraps an existing database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// databaseName extracts the database segment of a connection URI: the path
// after the last '/' and before any '?'.
func databaseName(uri string) (string, error) {
	name := uri
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.IndexByte(name, '?'); idx >= 0 {
		name = name[:idx]
	}
	if name == "" {
		return "", fmt.Errorf("store URI carries no database name")
	}
	return name, nil
}

type projectDoc struct {
	ID                 primitive.ObjectID  `bson:"_id"`
	Name               string              `bson:"name"`
	Description        string              `bson:"description"`
	Status             string              `bson:"status"`
	Client             *primitive.ObjectID `bson:"client"`
	StartDate          *time.Time          `bson:"start_date"`
	EndDate            *time.Time          `bson:"end_date"`
	ServerTechnologies []techDoc           `bson:"server_technologies"`
	ClientTechnologies []techDoc           `bson:"client_technologies"`
}

type techDoc struct {
	Name    string `bson:"name"`
	Version string `bson:"version"`
	Note    string `bson:"note"`
	Active  bool   `bson:"is_active"`
}

type taskDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	ProjectID   primitive.ObjectID   `bson:"project_id"`
	Name        string               `bson:"task_name"`
	AssignedTo  []primitive.ObjectID `bson:"assigned_to"`
	StartDate   *time.Time           `bson:"task_start_date"`
	EndDate     *time.Time           `bson:"task_end_date"`
	Finished    bool                 `bson:"is_task_finished"`
	Status      string               `bson:"status_name"`
	Priority    string               `bson:"task_priority"`
	Estimate    string               `bson:"estimate"`
	MilestoneID *primitive.ObjectID  `bson:"milestone_id"`
	GroupID     *primitive.ObjectID  `bson:"group_id"`
	LoggedTime  string               `bson:"logged_time"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type userDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	FirstName   string               `bson:"first_name"`
	LastName    string               `bson:"last_name"`
	Email       string               `bson:"email"`
	Designation *primitive.ObjectID  `bson:"designation"`
	Skills      []primitive.ObjectID `bson:"skills"`
	Roles       []primitive.ObjectID `bson:"roles"`
}

type milestoneDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProjectID primitive.ObjectID `bson:"project_id"`
	Title     string             `bson:"title"`
	StartDate *time.Time         `bson:"start_date"`
	EndDate   *time.Time         `bson:"end_date"`
	Status    string             `bson:"status"`
}

type membershipDoc struct {
	ProjectID primitive.ObjectID `bson:"project_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Status    string             `bson:"status"`
}

type availabilityDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	UserID   primitive.ObjectID `bson:"user_id"`
	Date     time.Time          `bson:"date"`
	Sessions []sessionDoc       `bson:"sessions"`
}

type sessionDoc struct {
	Name      string `bson:"name"`
	Available bool   `bson:"is_available"`
}

func (s *MongoStore) Project(ctx context.Context, id domain.ProjectID) (*record.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.ErrInvalidID, err)
	}

	var doc projectDoc
	err = s.db.Collection("projects").FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, record.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch project: %w", err)
	}

	p := projectFromDoc(doc)
	return &p, nil
}

func (s *MongoStore) ActiveProjects(ctx context.Context) ([]record.Project, error) {
	cur, err := s.db.Collection("projects").Find(ctx, bson.M{
		"status": bson.M{"$in": activeProjectStatuses},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch active projects: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // best-effort close after read

	var projects []record.Project
	for cur.Next(ctx) {
		var doc projectDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		projects = append(projects, projectFromDoc(doc))
	}
	return projects, cur.Err()
}

func (s *MongoStore) TasksByProject(ctx context.Context, id domain.ProjectID) ([]record.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.ErrInvalidID, err)
	}
	return s.findTasks(ctx, bson.M{"project_id": oid})
}

func (s *MongoStore) TasksByMilestone(ctx context.Context, id domain.MilestoneID) ([]record.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.ErrInvalidID, err)
	}
	return s.findTasks(ctx, bson.M{"milestone_id": oid})
}

func (s *MongoStore) findTasks(ctx context.Context, filter bson.M) ([]record.Task, error) {
	cur, err := s.db.Collection("tasks").Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // best-effort close after read

	var tasks []record.Task
	for cur.Next(ctx) {
		var doc taskDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, taskFromDoc(doc))
	}
	return tasks, cur.Err()
}

func (s *MongoStore) User(ctx context.Context, id domain.UserID) (*record.User, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.ErrInvalidID, err)
	}

	var doc userDoc
	err = s.db.Collection("users").FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, record.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	u, err := s.userFromDoc(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) Users(ctx context.Context, ids []domain.UserID) ([]record.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id.String())
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return nil, nil
	}

	cur, err := s.db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // best-effort close after read

	var users []record.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		u, err := s.userFromDoc(ctx, doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, cur.Err()
}

func (s *MongoStore) Milestones(ctx context.Context, id domain.ProjectID) ([]record.Milestone, error) {
	return s.findMilestones(ctx, id, nil)
}

func (s *MongoStore) ActiveMilestones(ctx context.Context, id domain.ProjectID) ([]record.Milestone, error) {
	active := "1"
	return s.findMilestones(ctx, id, &active)
}

func (s *MongoStore) findMilestones(ctx context.Context, id domain.ProjectID, status *string) ([]record.Milestone, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.ErrInvalidID, err)
	}
	filter := bson.M{"project_id": oid}
	if status != nil {
		filter["status"] = *status
	}

	cur, err := s.db.Collection("milestones").Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch milestones: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // best-effort close after read

	var milestones []record.Milestone
	for cur.Next(ctx) {
		var doc milestoneDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode milestone: %w", err)
		}
		milestones = append(milestones, record.Milestone{
			ID:        doc.ID.Hex(),
			ProjectID: doc.ProjectID.Hex(),
			Title:     doc.Title,
			StartDate: doc.StartDate,
			EndDate:   doc.EndDate,
			Active:    doc.Status == "1",
		})
	}
	return milestones, cur.Err()
}

func (s *MongoStore) Memberships(ctx context.Context, id domain.ProjectID) ([]record.Membership, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.ErrInvalidID, err)
	}

	cur, err := s.db.Collection("invite_users").Find(ctx, bson.M{"project_id": oid})
	if err != nil {
		return nil, fmt.Errorf("fetch memberships: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // best-effort close after read

	var memberships []record.Membership
	for cur.Next(ctx) {
		var doc membershipDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode membership: %w", err)
		}
		memberships = append(memberships, record.Membership{
			ProjectID: doc.ProjectID.Hex(),
			UserID:    doc.UserID.Hex(),
			Status:    doc.Status,
		})
	}
	return memberships, cur.Err()
}

func (s *MongoStore) Availability(ctx context.Context, id domain.UserID) ([]record.Availability, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.ErrInvalidID, err)
	}

	cur, err := s.db.Collection("useravailabilitycalender").Find(ctx, bson.M{"user_id": oid})
	if err != nil {
		return nil, fmt.Errorf("fetch availability: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // best-effort close after read

	var entries []record.Availability
	for cur.Next(ctx) {
		var doc availabilityDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
		entry := record.Availability{
			ID:     doc.ID.Hex(),
			UserID: doc.UserID.Hex(),
			Date:   doc.Date,
		}
		for _, sess := range doc.Sessions {
			entry.Sessions = append(entry.Sessions, record.Session{
				Name:      sess.Name,
				Available: sess.Available,
			})
		}
		entries = append(entries, entry)
	}
	return entries, cur.Err()
}

func (s *MongoStore) ClientName(ctx context.Context, clientID string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", domain.ErrInvalidID, err)
	}

	var doc struct {
		Name string `bson:"name"`
	}
	err = s.db.Collection("clients").FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", record.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch client: %w", err)
	}
	return doc.Name, nil
}

// userFromDoc resolves designation, skill, and role references to display
// names before returning the user.
func (s *MongoStore) userFromDoc(ctx context.Context, doc userDoc) (record.User, error) {
	u := record.User{
		ID:        doc.ID.Hex(),
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		Email:     doc.Email,
	}

	if doc.Designation != nil {
		names, err := s.resolveNames(ctx, "designations", []primitive.ObjectID{*doc.Designation})
		if err != nil {
			return u, err
		}
		u.Designation = names[doc.Designation.Hex()]
	}

	var err error
	if u.Skills, err = s.resolveNameList(ctx, "skills", doc.Skills); err != nil {
		return u, err
	}
	if u.Roles, err = s.resolveNameList(ctx, "roles", doc.Roles); err != nil {
		return u, err
	}
	return u, nil
}

func (s *MongoStore) resolveNameList(ctx context.Context, collection string, ids []primitive.ObjectID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	byID, err := s.resolveNames(ctx, collection, ids)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id.Hex()]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// resolveNames batch-resolves reference IDs to display names.
func (s *MongoStore) resolveNames(ctx context.Context, collection string, ids []primitive.ObjectID) (map[string]string, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", collection, err)
	}
	defer cur.Close(ctx) //nolint:errcheck // best-effort close after read

	names := map[string]string{}
	for cur.Next(ctx) {
		var doc struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		names[doc.ID.Hex()] = doc.Name
	}
	return names, cur.Err()
}

func projectFromDoc(doc projectDoc) record.Project {
	p := record.Project{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Description: doc.Description,
		Status:      doc.Status,
		StartDate:   doc.StartDate,
		EndDate:     doc.EndDate,
	}
	if doc.Client != nil {
		p.ClientID = doc.Client.Hex()
	}
	for _, t := range doc.ServerTechnologies {
		p.ServerTechnologies = append(p.ServerTechnologies, record.Technology(t))
	}
	for _, t := range doc.ClientTechnologies {
		p.ClientTechnologies = append(p.ClientTechnologies, record.Technology(t))
	}
	return p
}

func taskFromDoc(doc taskDoc) record.Task {
	t := record.Task{
		ID:         doc.ID.Hex(),
		ProjectID:  doc.ProjectID.Hex(),
		Name:       doc.Name,
		StartDate:  doc.StartDate,
		EndDate:    doc.EndDate,
		Finished:   doc.Finished,
		Status:     doc.Status,
		Priority:   doc.Priority,
		Estimate:   doc.Estimate,
		LoggedTime: doc.LoggedTime,
		UpdatedAt:  doc.UpdatedAt,
	}
	for _, uid := range doc.AssignedTo {
		t.AssignedTo = append(t.AssignedTo, uid.Hex())
	}
	if doc.MilestoneID != nil {
		t.MilestoneID = doc.MilestoneID.Hex()
	}
	if doc.GroupID != nil {
		t.GroupID = doc.GroupID.Hex()
	}
	return t
}
