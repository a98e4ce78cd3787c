/*
Package types defines the configuration data shared by every part of the
shortcuts program.

# Overview

The configuration is a single snapshot of three ordered collections:
  - Templates: named URL patterns invoked from selected text
  - Variables: named placeholders with a default value
  - Environments: named bundles of per-variable overrides

The snapshot is the only source of truth. Menus, previews and exports are
projections of it and are rebuilt from a fresh copy whenever it changes.

# Templates

Template:
  - Opaque ID, display Name and URL pattern
  - URL may contain {{NAME}} placeholders
  - URL may contain one %s selection placeholder

# Variables

Variable:
  - Name is trimmed and upper-cased before it is stored
  - No two variables share a name
  - DefaultValue is used whenever an environment has no value

# Environments

Environment:
  - Opaque ID and upper-cased unique Name
  - Values keyed by variable name, one entry per key

# Store Keys

Each collection is stored under its own top-level key (templates,
variables, environments). Writes replace a key wholesale; Partial names the
keys a write touches.
*/
package types
