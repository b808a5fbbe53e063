// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection set is reconciled
independently; problems are aggregated so startup fails with the full list.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{"users", usersIndexes()},
		{"classes", classesIndexes()},
		{"assignments", assignmentsIndexes()},
		{"assignment_submissions", submissionsIndexes()},
		{"goals", goalsIndexes()},
		{"reports", reportsIndexes()},
		{"notifications", notificationsIndexes()},
		{"subscriptions", subscriptionsIndexes()},
		{"discounts", discountsIndexes()},
		{"free_teacher_slots", freeSlotsIndexes()},
		{"oauth_states", oauthStatesIndexes()},
		{"login_records", loginRecordsIndexes()},
	}

	var problems []string
	for _, s := range sets {
		if err := ensureIndexSet(ctx, db.Collection(s.coll), s.models); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile desired indexes for one collection                               */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
	TTL    *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func ttlVal(v *int32) int32 {
	if v == nil {
		return -1
	}
	return *v
}

// IsDuplicateKey reports whether err is a Mongo E11000 duplicate key error.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates missing indexes, reuses matching ones, and drops and
// recreates an index whose keys match but whose name, uniqueness or TTL differ.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet lists nothing; create everything.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		opts := m.Options
		if opts == nil {
			opts = options.Index()
		}
		name := ""
		if opts.Name != nil {
			name = *opts.Name
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			same := boolVal(ex.Unique) == boolVal(opts.Unique) &&
				ttlVal(ex.TTL) == ttlVal(opts.ExpireAfterSeconds) &&
				(name == "" || ex.Name == name)
			if same {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name))
				continue
			}
			zap.L().Info("recreating index with new options",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", name),
				zap.String("keys", sig))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if IsDuplicateKey(err) && boolVal(opts.Unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index on {%s}, duplicates present", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", boolVal(opts.Unique)),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func usersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Role listings (admin teacher list) sorted by name.
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_role_fullnameci_id"),
		},
		// Parent lookup by child.
		{
			Keys:    bson.D{{Key: "child_ids", Value: 1}},
			Options: options.Index().SetName("idx_users_child_ids"),
		},
		// Teacher's own students.
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_users_createdby_role"),
		},
		// Google sign-in lookup.
		{
			Keys:    bson.D{{Key: "auth_return_id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("idx_users_auth_return_id"),
		},
	}
}

func classesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_classes_teacher_nameci"),
		},
		{
			Keys:    bson.D{{Key: "co_teacher_ids", Value: 1}},
			Options: options.Index().SetName("idx_classes_co_teachers"),
		},
		{
			Keys:    bson.D{{Key: "student_ids", Value: 1}},
			Options: options.Index().SetName("idx_classes_students"),
		},
	}
}

func assignmentsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "due_date", Value: 1}},
			Options: options.Index().SetName("idx_assignments_student_due"),
		},
		{
			Keys:    bson.D{{Key: "class_id", Value: 1}, {Key: "due_date", Value: 1}},
			Options: options.Index().SetName("idx_assignments_class_due"),
		},
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_assignments_teacher_created"),
		},
	}
}

func submissionsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// One submission per (assignment, student).
		{
			Keys:    bson.D{{Key: "assignment_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_submissions_assignment_student"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("idx_submissions_student_submitted"),
		},
	}
}

func goalsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_goals_student_created"),
		},
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_goals_teacher_status"),
		},
	}
}

func reportsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "share_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_reports_share_token"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reports_student_created"),
		},
	}
}

func notificationsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_read_created"),
		},
	}
}

func subscriptionsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}, {Key: "period_end", Value: -1}},
			Options: options.Index().SetName("idx_subscriptions_teacher_period_end"),
		},
	}
}

func discountsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_discounts_code"),
		},
	}
}

func freeSlotsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slot_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_free_slots_number"),
		},
		{
			Keys:    bson.D{{Key: "teacher_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_free_slots_teacher"),
		},
	}
}

func oauthStatesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_oauth_states_state"),
		},
		// Mongo removes expired states on its own; the cleanup worker covers
		// deployments where the TTL monitor is disabled.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_oauth_states_expires_at"),
		},
	}
}

func loginRecordsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_login_records_user_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((365 * 24 * time.Hour).Seconds())).SetName("ttl_login_records_created_at"),
		},
	}
}
