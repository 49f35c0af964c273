// Package milvus provides the Milvus-backed vector store.
//
// The adapter translates domain collection schemas, index specs and search
// requests into Milvus SDK calls. Conversions between domain and SDK types
// live in convert.go so they can be tested without a server.
package milvus
