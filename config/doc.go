// Package config loads glimpse settings from a YAML file with environment
// overrides.
//
// Example glimpse.yaml:
//
//	data_dir: ./data
//	storage:
//	  backend: badger
//	  images: minio
//	  minio:
//	    endpoint: localhost:9000
//	    bucket: screenshots
//	ai:
//	  host: http://localhost:11434
//	  vision_model: qwen2.5vl:7b
//	  matcher: local
//	  timeout: 90s
//	search:
//	  min_confidence: 40
//
// OPENAI_API_KEY, GLIMPSE_AI_HOST, GLIMPSE_AI_MODEL and GLIMPSE_DATA_DIR
// take precedence over the file. GLIMPSE_CONFIG names the file to read.
package config
