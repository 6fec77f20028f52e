// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Extractor / ExtractorRegistry: Turns files into raw text
//   - Chunker / SentenceSplitter: Splits text into bounded chunks
//   - EmbeddingService: Maps text to vectors
//   - CollectionStore: Persists chunks and answers nearest-neighbour queries
//   - LLMService: Answers prompts
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - PromptStore: User-editable prompt templates. Services fall back to
//     embedded defaults when nil.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
