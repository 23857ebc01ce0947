package postgres

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/gigboard/internal/domain/gig"
)

// GigRepository implements gig.Repository.
type GigRepository struct {
	pool *pgxpool.Pool
}

func NewGigRepository(pool *pgxpool.Pool) *GigRepository {
	return &GigRepository{pool: pool}
}

func (r *GigRepository) Create(ctx context.Context, g *gig.Gig) error {
	revisions, err := json.Marshal(g.Revisions)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO gigs
		(gig_id, owner_id, title, description, images, price, category, status, time_limit, accepted_by, accepted_at, submitted_at, completed_at, revision_count, max_revisions, revisions, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id
	`, g.GigID, g.OwnerID, g.Title, g.Description, g.Images, g.Price, g.Category, g.Status, g.TimeLimit, g.AcceptedBy, g.AcceptedAt, g.SubmittedAt, g.CompletedAt, g.RevisionCount, g.MaxRevisions, revisions, g.CreatedAt, g.UpdatedAt)
	return row.Scan(&g.ID)
}

func (r *GigRepository) Update(ctx context.Context, g *gig.Gig) error {
	revisions, err := json.Marshal(g.Revisions)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE gigs SET title=$1, description=$2, images=$3, price=$4, category=$5, status=$6, time_limit=$7,
			accepted_by=$8, accepted_at=$9, submitted_at=$10, completed_at=$11, revision_count=$12, max_revisions=$13,
			revisions=$14, updated_at=$15
		WHERE gig_id=$16
	`, g.Title, g.Description, g.Images, g.Price, g.Category, g.Status, g.TimeLimit,
		g.AcceptedBy, g.AcceptedAt, g.SubmittedAt, g.CompletedAt, g.RevisionCount, g.MaxRevisions,
		revisions, g.UpdatedAt, g.GigID)
	return err
}

func (r *GigRepository) Delete(ctx context.Context, gigID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM gigs WHERE gig_id=$1`, gigID)
	return err
}

func (r *GigRepository) GetByID(ctx context.Context, gigID uuid.UUID) (*gig.Gig, error) {
	row := r.pool.QueryRow(ctx, gigSelect+` WHERE gig_id=$1`, gigID)
	return scanGig(row)
}

func (r *GigRepository) List(ctx context.Context, filter gig.Filter, limit, offset int) ([]*gig.Gig, error) {
	query := gigSelect
	args := []interface{}{}
	where := ""
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		and("status=$" + strconv.Itoa(len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		and("owner_id=$" + strconv.Itoa(len(args)))
	}
	if filter.AcceptedBy != nil {
		args = append(args, *filter.AcceptedBy)
		and("accepted_by=$" + strconv.Itoa(len(args)))
	}
	query += where + " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var gigs []*gig.Gig
	for rows.Next() {
		g, err := scanGig(rows)
		if err != nil {
			return nil, err
		}
		gigs = append(gigs, g)
	}
	return gigs, rows.Err()
}

const gigSelect = `
	SELECT id, gig_id, owner_id, title, description, images, price, category, status, time_limit,
		accepted_by, accepted_at, submitted_at, completed_at, revision_count, max_revisions, revisions, created_at, updated_at
	FROM gigs`

func scanGig(row pgx.Row) (*gig.Gig, error) {
	var g gig.Gig
	var revisions []byte
	if err := row.Scan(&g.ID, &g.GigID, &g.OwnerID, &g.Title, &g.Description, &g.Images, &g.Price, &g.Category, &g.Status, &g.TimeLimit,
		&g.AcceptedBy, &g.AcceptedAt, &g.SubmittedAt, &g.CompletedAt, &g.RevisionCount, &g.MaxRevisions, &revisions, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(revisions) > 0 {
		if err := json.Unmarshal(revisions, &g.Revisions); err != nil {
			return nil, err
		}
	}
	return &g, nil
}
