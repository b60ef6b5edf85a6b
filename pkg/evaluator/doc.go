// Package evaluator groups the shipped implementations of ports.Evaluator:
//
//   - heuristic: rule-based scoring with template rewrites, no network.
//   - openai: chat-completion backed scoring and rewriting.
//   - evaluatortest: scripted, random and mock evaluators for tests.
package evaluator
