package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/birdquiz/birdquiz/internal/dataset"
	"github.com/birdquiz/birdquiz/internal/quiz"
)

var birdColumns = []string{"id", "japanese_name", "scientific_name", "family", "order_name", "description", "habitat"}

var imageColumns = []string{"id", "bird_id", "image_url", "photographer", "license", "active"}

// BirdRepo reads and imports the bird dataset. It satisfies questiongen.Source.
type BirdRepo struct {
	db *sql.DB
}

// ImportStats counts the rows written by Import.
type ImportStats struct {
	Birds  int
	Images int
}

// Import upserts every bird and image of ds in one transaction. Existing rows
// keep their created_at; everything else is overwritten.
func (r *BirdRepo) Import(ctx context.Context, ds *dataset.Dataset, now time.Time) (ImportStats, error) {
	var stats ImportStats
	now = now.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, b := range ds.Birds {
		ins := builder().Insert(BirdsTable.Name).
			Columns(append(birdColumns, "created_at", "updated_at")...).
			Values(b.ID, b.JapaneseName, b.ScientificName, b.Family, b.Order, b.Description, b.Habitat, now, now).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					for _, c := range birdColumns[1:] {
						u.SetExcluded(c)
					}
					u.SetExcluded("updated_at")
				}),
			)
		if err := exec(ctx, tx, ins); err != nil {
			return stats, fmt.Errorf("upsert bird %s: %w", b.ID, err)
		}
		stats.Birds++

		for _, img := range b.Images {
			ins := builder().Insert(BirdImagesTable.Name).
				Columns(append(imageColumns, "created_at")...).
				Values(img.ID, b.ID, img.URL, img.Photographer, img.License, img.Active, now).
				OnConflict(
					entsql.ConflictColumns("id"),
					entsql.ResolveWith(func(u *entsql.UpdateSet) {
						for _, c := range imageColumns[1:] {
							u.SetExcluded(c)
						}
					}),
				)
			if err := exec(ctx, tx, ins); err != nil {
				return stats, fmt.Errorf("upsert image %s: %w", img.ID, err)
			}
			stats.Images++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}

// Birds returns all birds ordered by id, or only those of family when it is
// non-empty.
func (r *BirdRepo) Birds(ctx context.Context, family string) ([]dataset.Bird, error) {
	s := builder().Select(birdColumns...).From(builder().Table(BirdsTable.Name)).OrderBy("id")
	if family != "" {
		s.Where(entsql.EQ("family", family))
	}
	birds, err := queryAll(ctx, r.db, s, scanBird)
	if err != nil {
		return nil, fmt.Errorf("query birds: %w", err)
	}
	return birds, nil
}

// Bird returns one bird.
func (r *BirdRepo) Bird(ctx context.Context, id string) (dataset.Bird, error) {
	s := builder().Select(birdColumns...).From(builder().Table(BirdsTable.Name)).
		Where(entsql.EQ("id", id))
	query, args := s.Query()
	b, err := scanBird(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return dataset.Bird{}, fmt.Errorf("bird %s: %w", id, quiz.ErrNotFound)
	}
	if err != nil {
		return dataset.Bird{}, fmt.Errorf("query bird %s: %w", id, err)
	}
	return b, nil
}

// Images returns the active images of a bird ordered by id.
func (r *BirdRepo) Images(ctx context.Context, birdID string) ([]dataset.Image, error) {
	s := builder().Select(imageColumns...).From(builder().Table(BirdImagesTable.Name)).
		Where(entsql.And(entsql.EQ("bird_id", birdID), entsql.EQ("active", true))).
		OrderBy("id")
	imgs, err := queryAll(ctx, r.db, s, scanImage)
	if err != nil {
		return nil, fmt.Errorf("query images of %s: %w", birdID, err)
	}
	return imgs, nil
}

// Image returns one active image.
func (r *BirdRepo) Image(ctx context.Context, id string) (dataset.Image, error) {
	s := builder().Select(imageColumns...).From(builder().Table(BirdImagesTable.Name)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("active", true)))
	query, args := s.Query()
	img, err := scanImage(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return dataset.Image{}, fmt.Errorf("image %s: %w", id, quiz.ErrNotFound)
	}
	if err != nil {
		return dataset.Image{}, fmt.Errorf("query image %s: %w", id, err)
	}
	return img, nil
}

// Families returns the distinct non-empty bird families, sorted.
func (r *BirdRepo) Families(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "family")
}

// Orders returns the distinct non-empty bird orders, sorted.
func (r *BirdRepo) Orders(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "order_name")
}

func (r *BirdRepo) distinct(ctx context.Context, column string) ([]string, error) {
	s := builder().Select(column).From(builder().Table(BirdsTable.Name)).
		Distinct().
		Where(entsql.NEQ(column, "")).
		OrderBy(column)
	vals, err := queryStrings(ctx, r.db, s)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", column, err)
	}
	return vals, nil
}

// Count returns the number of birds and active images.
func (r *BirdRepo) Count(ctx context.Context) (birds, images int, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM birds),
		(SELECT COUNT(*) FROM bird_images WHERE active = 1)`).Scan(&birds, &images)
	if err != nil {
		return 0, 0, fmt.Errorf("count dataset: %w", err)
	}
	return birds, images, nil
}

func scanBird(r rowScanner) (dataset.Bird, error) {
	var b dataset.Bird
	err := r.Scan(&b.ID, &b.JapaneseName, &b.ScientificName, &b.Family, &b.Order, &b.Description, &b.Habitat)
	return b, err
}

func scanImage(r rowScanner) (dataset.Image, error) {
	var img dataset.Image
	err := r.Scan(&img.ID, &img.BirdID, &img.URL, &img.Photographer, &img.License, &img.Active)
	return img, err
}
