// Package integration contains the ERP integration bounded context.
// It describes how vendor XML documents map onto relational tables and back.
//
// Key concepts:
//   - IntegrationProcess: one XML node-set mapped to one target table, or one row-set rendered into one XML template
//   - IntegrationField: one column mapping within a process, evaluated in ID order
//   - MappingRule, ExpandTemplate, Coerce: the value resolution language applied to every field
//   - Generators: values computed for GENERATE_ columns on outbound documents
//
// Design Pattern: Ports & Adapters
//   - Ports (ProcessReader, TableGateway, IdentifierGuard, PayloadArchive) are defined here
//   - Adapters (GORM, S3) live in the infrastructure layer
package integration
