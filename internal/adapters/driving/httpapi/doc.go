// Package httpapi exposes the ingestion and chat services over HTTP using gin.
//
// Routes:
//
//	GET  /health        liveness
//	POST /ingest_path   ingest the docs directory
//	POST /ingest_files  upload multipart "files" and ingest them
//	POST /ingest_one    ingest one file (?filename=&max_pages=&max_chunks=)
//	POST /chat          {"question": "..."} -> {"answer": "...", "used_docs": N}
//	GET  /history       recent ingestion runs (?limit=)
//	GET  /metrics       Prometheus metrics
//
// Errors are returned as {"detail": "..."}.
package httpapi
