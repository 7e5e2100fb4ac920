package harness

import "embed"

//go:embed assets/eval_code.py assets/eval_query.py
var assets embed.FS
