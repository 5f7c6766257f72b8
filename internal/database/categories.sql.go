package database

import (
	"context"
	"strings"
)

const categoryColumns = `id, name, description, color, icon, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var c Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Color,
		&c.Icon,
		&c.IsActive,
		dbTime{&c.CreatedAt},
		dbTime{&c.UpdatedAt},
	)
	return c, err
}

const createCategory = `
INSERT INTO categories (name, description, color, icon, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + categoryColumns

func (s *SQLStore) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	now := s.stamp()
	row := s.queryRow(ctx, createCategory,
		arg.Name,
		arg.Description,
		arg.Color,
		arg.Icon,
		arg.IsActive,
		now,
		now,
	)
	c, err := scanCategory(row)
	return c, classify(err)
}

func (s *SQLStore) GetCategory(ctx context.Context, id int64) (Category, error) {
	c, err := scanCategory(s.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	return c, classify(err)
}

// ListCategories returns categories ordered by name.
func (s *SQLStore) ListCategories(ctx context.Context, filter CategoryFilter) ([]Category, error) {
	var where []string
	var args []any
	if filter.Active != nil {
		where = append(where, "is_active = ?")
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		where = append(where, "name "+s.d.like+` ? ESCAPE '\'`)
		args = append(args, escapeLike(filter.Search))
	}
	q := `SELECT ` + categoryColumns + ` FROM categories`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY name ASC"

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const updateCategory = `
UPDATE categories SET
	name = COALESCE(?, name),
	description = COALESCE(?, description),
	color = COALESCE(?, color),
	icon = COALESCE(?, icon),
	is_active = COALESCE(?, is_active),
	updated_at = ?
WHERE id = ?
RETURNING ` + categoryColumns

func (s *SQLStore) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := s.queryRow(ctx, updateCategory,
		nullString(arg.Name),
		nullString(arg.Description),
		nullString(arg.Color),
		nullString(arg.Icon),
		nullBool(arg.IsActive),
		s.stamp(),
		arg.ID,
	)
	c, err := scanCategory(row)
	return c, classify(err)
}

// ToggleCategory flips is_active in a single statement.
func (s *SQLStore) ToggleCategory(ctx context.Context, id int64) (Category, error) {
	row := s.queryRow(ctx,
		`UPDATE categories SET is_active = NOT is_active, updated_at = ? WHERE id = ? RETURNING `+categoryColumns,
		s.stamp(), id,
	)
	c, err := scanCategory(row)
	return c, classify(err)
}

func (s *SQLStore) DeleteCategory(ctx context.Context, id int64) error {
	return s.execOne(ctx, `DELETE FROM categories WHERE id = ?`, id)
}
