// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwenger0/cursora/internal/models"
)

// GetUser returns the user with the given id, or ErrUserNotFound.
func (db *DB) GetUser(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `
		SELECT user_id, name, email, cohort_tag, skill_level, interests, created_at, last_active
		FROM users
		WHERE user_id = ?`, userID)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", userID, err)
	}
	return user, nil
}

// ListUsers returns users ordered by event count descending.
func (db *DB) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT u.user_id, u.name, u.email, u.cohort_tag, u.skill_level, u.interests,
		       u.created_at, u.last_active
		FROM users u
		LEFT JOIN events e ON u.user_id = e.user_id
		GROUP BY u.user_id, u.name, u.email, u.cohort_tag, u.skill_level, u.interests,
		         u.created_at, u.last_active
		ORDER BY COUNT(e.event_id) DESC, u.user_id ASC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer closeRows(rows)

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users rows: %w", err)
	}
	return users, nil
}

// CreateUser inserts a learner profile. Used by seeding and fixtures.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (user_id, name, email, cohort_tag, skill_level, interests, created_at, last_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.CohortTag, string(user.SkillLevel),
		joinTags(user.Interests), user.CreatedAt, user.LastActive)
	if err != nil {
		return fmt.Errorf("create user %q: %w", user.ID, err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user       models.User
		email      sql.NullString
		cohort     sql.NullString
		skill      sql.NullString
		interests  sql.NullString
		lastActive sql.NullTime
	)

	err := row.Scan(&user.ID, &user.Name, &email, &cohort, &skill, &interests,
		&user.CreatedAt, &lastActive)
	if err != nil {
		return nil, err
	}

	user.Email = email.String
	user.CohortTag = cohort.String
	user.SkillLevel = models.SkillLevel(skill.String)
	user.Interests = splitTags(interests.String)
	if lastActive.Valid {
		t := lastActive.Time
		user.LastActive = &t
	}
	return &user, nil
}
