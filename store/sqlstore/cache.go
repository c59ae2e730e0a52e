package sqlstore

import (
	"bytes"
	"context"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/cruddals"
	"github.com/syssam/cruddals/dialect"
	"github.com/syssam/cruddals/dialect/sql"
)

// rows runs a read statement and returns its raw rows. Reads outside of
// transactions go through the cache when one is configured.
func (s *Store) rows(ctx context.Context, table, op, query string, args []any) ([]map[string]any, error) {
	conn, tx := s.conn(ctx)
	if s.cache == nil || tx != nil {
		return scan(ctx, conn, query, args)
	}
	key := cruddals.CacheKey{Table: table, Operation: op, Query: query, Args: args}.String()
	if data, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "sqlstore: cache get", "key", key, "error", err)
	} else if data != nil {
		rows, err := decodeRows(data)
		if err == nil {
			return rows, nil
		}
		s.logger.WarnContext(ctx, "sqlstore: cache decode", "key", key, "error", err)
	}
	rows, err := scan(ctx, conn, query, args)
	if err != nil {
		return nil, err
	}
	data, err := msgpack.Marshal(rows)
	if err != nil {
		s.logger.WarnContext(ctx, "sqlstore: cache encode", "key", key, "error", err)
		return rows, nil
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "sqlstore: cache set", "key", key, "error", err)
	}
	return rows, nil
}

func scan(ctx context.Context, conn dialect.ExecQuerier, query string, args []any) ([]map[string]any, error) {
	var rows sql.Rows
	if err := conn.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return sql.ScanMaps(rows)
}

func decodeRows(data []byte) ([]map[string]any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	// Drivers return signed integers; msgpack decodes positive ones as uint64.
	for _, r := range rows {
		for k, v := range r {
			if u, ok := v.(uint64); ok && u <= math.MaxInt64 {
				r[k] = int64(u)
			}
		}
	}
	return rows, nil
}

// invalidate drops the cached reads of the given tables.
func (s *Store) invalidate(ctx context.Context, tables ...string) {
	if s.cache == nil {
		return
	}
	for _, t := range tables {
		prefix := cruddals.CacheKey{Table: t}.Prefix()
		if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
			s.logger.WarnContext(ctx, "sqlstore: cache invalidate", "prefix", prefix, "error", err)
		}
	}
}
