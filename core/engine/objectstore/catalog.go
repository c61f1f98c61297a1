package objectstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// fileRecord is one row of the file catalog.
type fileRecord struct {
	ID         string    `gorm:"primaryKey;size:24"`
	Bucket     string    `gorm:"size:255;not null;index"`
	Filename   string    `gorm:"size:1024;not null"`
	Length     int64     `gorm:"not null"`
	ChunkSize  int32     `gorm:"not null"`
	UploadDate time.Time `gorm:"not null;index"`
	MD5        string    `gorm:"size:32"`
	Metadata   string    `gorm:"type:text"`
}

func (fileRecord) TableName() string {
	return "gridfs_files"
}

// propertyRecord indexes one metadata property of a file so equality clauses run in SQL.
// Token is a digest of kind and value; the full value stays in fileRecord.Metadata.
type propertyRecord struct {
	FileID string `gorm:"primaryKey;size:24"`
	Name   string `gorm:"primaryKey;size:191;index:idx_gridfs_property_lookup,priority:1"`
	Token  string `gorm:"size:64;not null;index:idx_gridfs_property_lookup,priority:2"`
}

func (propertyRecord) TableName() string {
	return "gridfs_properties"
}

// metadataEntry keeps the value kind so timestamps and numbers survive the text column.
type metadataEntry struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type catalog struct {
	db *gorm.DB
}

func (c *catalog) migrate(ctx context.Context) error {
	if err := c.db.WithContext(ctx).AutoMigrate(&fileRecord{}, &propertyRecord{}); err != nil {
		return fmt.Errorf("failed to migrate file catalog: %w", err)
	}
	return nil
}

func (c *catalog) insert(ctx context.Context, bucket string, f engine.File) error {
	rec, err := toRecord(bucket, f)
	if err != nil {
		return err
	}
	props := toProperties(f)

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		if len(props) == 0 {
			return nil
		}
		return tx.Create(&props).Error
	})
}

func (c *catalog) get(ctx context.Context, bucket string, id primitive.ObjectID) (fileRecord, error) {
	var rec fileRecord
	err := c.db.WithContext(ctx).Where("bucket = ? AND id = ?", bucket, id.Hex()).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, engine.ErrFileNotFound
	}
	return rec, err
}

// find pushes filename, _id and scalar metadata clauses down to SQL and evaluates the rest with engine.Select.
// The SQL limit applies only when every clause was pushed down.
func (c *catalog) find(ctx context.Context, bucket string, filter engine.Filter, opts engine.FindOptions) ([]engine.File, error) {
	q := c.db.WithContext(ctx).Where("bucket = ?", bucket)

	exact := true
	for key, want := range filter {
		switch {
		case key == engine.FieldFilename:
			name, ok := want.(string)
			if !ok {
				exact = false
				continue
			}
			q = q.Where("filename = ?", name)
		case key == engine.FieldID:
			switch id := want.(type) {
			case primitive.ObjectID:
				q = q.Where("id = ?", id.Hex())
			case []primitive.ObjectID:
				hexes := make([]string, len(id))
				for i, oid := range id {
					hexes[i] = oid.Hex()
				}
				q = q.Where("id IN ?", hexes)
			default:
				exact = false
			}
		case strings.HasPrefix(key, engine.MetadataPrefix):
			tokens, ok := filterTokens(want)
			if !ok {
				exact = false
				continue
			}
			sub := c.db.Model(&propertyRecord{}).Select("file_id").
				Where("name = ? AND token IN ?", strings.TrimPrefix(key, engine.MetadataPrefix), tokens)
			q = q.Where("id IN (?)", sub)
		default:
			exact = false
		}
	}

	q = q.Order("upload_date ASC, id ASC")
	if exact && opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []fileRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	files := make([]engine.File, 0, len(rows))
	for _, row := range rows {
		f, err := fromRecord(row)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return engine.Select(files, filter, opts), nil
}

func (c *catalog) remove(ctx context.Context, bucket string, id primitive.ObjectID) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("bucket = ? AND id = ?", bucket, id.Hex()).Delete(&fileRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return engine.ErrFileNotFound
		}
		return tx.Where("file_id = ?", id.Hex()).Delete(&propertyRecord{}).Error
	})
}

func toRecord(bucket string, f engine.File) (fileRecord, error) {
	entries := make([]metadataEntry, 0, f.Metadata.Len())
	f.Metadata.Range(func(key string, v metadata.Value) bool {
		entries = append(entries, metadataEntry{Key: key, Kind: v.Kind().String(), Value: v.String()})
		return true
	})
	raw, err := json.Marshal(entries)
	if err != nil {
		return fileRecord{}, err
	}

	md5, _ := f.MD5.(string)
	return fileRecord{
		ID:         f.ID.Hex(),
		Bucket:     bucket,
		Filename:   f.Filename,
		Length:     f.Length,
		ChunkSize:  f.ChunkSize,
		UploadDate: f.UploadDate,
		MD5:        md5,
		Metadata:   string(raw),
	}, nil
}

func toProperties(f engine.File) []propertyRecord {
	props := make([]propertyRecord, 0, f.Metadata.Len())
	f.Metadata.Range(func(key string, v metadata.Value) bool {
		if token, ok := propertyToken(v); ok {
			props = append(props, propertyRecord{FileID: f.ID.Hex(), Name: key, Token: token})
		}
		return true
	})
	return props
}

// propertyToken digests string, number and boolean values. Timestamps compare by instant
// and are left to engine.Select.
func propertyToken(v metadata.Value) (string, bool) {
	text := v.String()
	switch v.Kind() {
	case metadata.KindString, metadata.KindBool:
	case metadata.KindNumber:
		if v.Float() == 0 {
			text = "0"
		}
	default:
		return "", false
	}
	sum := sha256.Sum256([]byte(v.Kind().String() + "\x00" + text))
	return hex.EncodeToString(sum[:]), true
}

// filterTokens returns the tokens a metadata clause may match, or false when the clause
// cannot be pushed down.
func filterTokens(want any) ([]string, bool) {
	if want == nil {
		return nil, false
	}
	values := []any{want}
	switch w := want.(type) {
	case []any:
		values = w
	case []string:
		values = make([]any, len(w))
		for i, s := range w {
			values[i] = s
		}
	}
	if len(values) == 0 {
		return nil, false
	}

	tokens := make([]string, 0, len(values))
	for _, x := range values {
		v, err := metadata.ValueOf(x)
		if err != nil {
			return nil, false
		}
		token, ok := propertyToken(v)
		if !ok {
			return nil, false
		}
		tokens = append(tokens, token)
	}
	return tokens, true
}

func fromRecord(rec fileRecord) (engine.File, error) {
	id, err := primitive.ObjectIDFromHex(rec.ID)
	if err != nil {
		return engine.File{}, fmt.Errorf("catalog row %q: %w", rec.ID, err)
	}

	var md metadata.Metadata
	if rec.Metadata != "" {
		var entries []metadataEntry
		if err := json.Unmarshal([]byte(rec.Metadata), &entries); err != nil {
			return engine.File{}, fmt.Errorf("catalog row %q: metadata: %w", rec.ID, err)
		}
		for _, e := range entries {
			v, err := parseEntry(e)
			if err != nil {
				return engine.File{}, fmt.Errorf("catalog row %q: metadata %q: %w", rec.ID, e.Key, err)
			}
			md.Set(e.Key, v)
		}
	}

	f := engine.File{
		ID:         id,
		Filename:   rec.Filename,
		Length:     rec.Length,
		ChunkSize:  rec.ChunkSize,
		UploadDate: rec.UploadDate.UTC(),
		Metadata:   md,
	}
	if rec.MD5 != "" {
		f.MD5 = rec.MD5
	}
	return f, nil
}

func parseEntry(e metadataEntry) (metadata.Value, error) {
	switch e.Kind {
	case metadata.KindString.String():
		return metadata.String(e.Value), nil
	case metadata.KindNumber.String():
		n, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return metadata.Value{}, err
		}
		return metadata.Number(n), nil
	case metadata.KindBool.String():
		b, err := strconv.ParseBool(e.Value)
		if err != nil {
			return metadata.Value{}, err
		}
		return metadata.Bool(b), nil
	case metadata.KindTime.String():
		t, err := time.Parse(time.RFC3339Nano, e.Value)
		if err != nil {
			return metadata.Value{}, err
		}
		return metadata.Time(t), nil
	default:
		return metadata.Value{}, fmt.Errorf("unknown kind %q", e.Kind)
	}
}
