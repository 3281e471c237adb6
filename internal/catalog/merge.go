package catalog

import "github.com/mmynk/taxava/internal/models"

// Merge combines seed and local records by ID. Seed records come first in
// seed order; a local record sharing an ID replaces the seed record in
// place; local-only records follow in stored order. The result never holds
// two records with the same ID, and a later local record beats an earlier
// one with the same ID.
func Merge[T models.Record](seed, local []T) []T {
	index := make(map[int]int, len(seed)+len(local))
	out := make([]T, 0, len(seed)+len(local))
	for _, list := range [][]T{seed, local} {
		for _, r := range list {
			id := r.RecordID()
			if i, ok := index[id]; ok {
				out[i] = r
				continue
			}
			index[id] = len(out)
			out = append(out, r)
		}
	}
	return out
}

// NextID returns the identifier for a new record: the highest existing ID
// plus one, or 1 for an empty set. Pass the merged set, never the overlay
// alone, or new records can collide with seed IDs.
func NextID[T models.Record](records []T) int {
	highest := 0
	for _, r := range records {
		if id := r.RecordID(); id > highest {
			highest = id
		}
	}
	return highest + 1
}

// upsert replaces the record with the same ID in local, or appends it.
func upsert[T models.Record](local []T, rec T) []T {
	for i := range local {
		if local[i].RecordID() == rec.RecordID() {
			local[i] = rec
			return local
		}
	}
	return append(local, rec)
}

func find[T models.Record](records []T, id int) (T, bool) {
	for _, r := range records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}
