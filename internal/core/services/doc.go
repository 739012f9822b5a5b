// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The question pipeline is split into six collaborators, each constructed
// explicitly and injected into the Assistant:
//
//   - Classifier: question text to Topic
//   - RetrievalService: Topic to the latest event rows
//   - PromptBuilder: question and rows to a grounding prompt
//   - GenerationService: prompt to completion text
//   - ReportComposer: completion to a formatted Report
//   - DispatchService: Report to the notification channel
//
// Services are pure Go with no external dependencies beyond the ports.
package services
