// Package openaicompat is a small client for any OpenAI-compatible Chat
// Completions backend (OpenAI, vLLM, LiteLLM, the local mock backend).
//
// It handles request serialization, response parsing and error mapping.
// Backend failures are reported as *api.APIError values so HTTP handlers and
// callers that fall back to canned replies see one error shape.
package openaicompat
