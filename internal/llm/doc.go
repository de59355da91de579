// Package llm provides the language model features of the survey: follow-up
// question generation, style analysis and room image rendering. It supports
// OpenAI and Anthropic backends, with retry logic, rate limiting, and
// response caching.
package llm
