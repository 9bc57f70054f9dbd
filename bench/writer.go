package main

import (
	"log"

	"github.com/brensch/gridsearch/store"
)

// parquetWriterLoop buffers rows and flushes a batch file every rowsPerFlush
// rows and once more when in is closed. Keys go into the written log only
// after their batch is on disk.
func parquetWriterLoop(outDir string, rowsPerFlush int, in <-chan store.RunRow, written *store.WrittenLog) (batches int) {
	if rowsPerFlush <= 0 {
		rowsPerFlush = 500
	}

	pending := make([]store.RunRow, 0, rowsPerFlush)
	batchID := store.NewRunID()

	flush := func(reason string) {
		if len(pending) == 0 {
			return
		}
		for i := range pending {
			pending[i].BatchID = batchID
		}
		outPath, err := store.WriteBatchParquetAtomic(outDir, pending)
		if err != nil {
			log.Printf("Parquet flush failed (%s, rows=%d): %v", reason, len(pending), err)
			return
		}
		keys := make([]string, 0, len(pending))
		for _, row := range pending {
			keys = append(keys, row.Key())
		}
		if written != nil {
			if err := written.AddMany(keys); err != nil {
				// The batch is on disk; at worst these jobs run again next time.
				log.Printf("Written log append failed (%s): %v", reason, err)
			}
		}
		log.Printf("Parquet flush ok (%s): %s (rows=%d)", reason, outPath, len(pending))
		batches++
		pending = pending[:0]
		batchID = store.NewRunID()
	}

	for row := range in {
		pending = append(pending, row)
		if len(pending) >= rowsPerFlush {
			flush("count")
		}
	}
	flush("final")
	return batches
}
