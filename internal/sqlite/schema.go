package sqlite

// Schema DDL. The database is rebuilt from the JSONL files on every Attach.
const (
	createProductCmptTypes = `CREATE TABLE product_cmpt_types (
    name TEXT PRIMARY KEY,
    supertype TEXT,
    document TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createProductCmpts = `CREATE TABLE product_cmpts (
    name TEXT PRIMARY KEY,
    type_name TEXT NOT NULL,
    template TEXT,
    is_template INTEGER NOT NULL DEFAULT 0,
    document TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

const (
	idxTypesSupertype   = `CREATE INDEX idx_product_cmpt_types_supertype ON product_cmpt_types(supertype);`
	idxProductCmptsType = `CREATE INDEX idx_product_cmpts_type ON product_cmpts(type_name);`
	idxProductCmptsTmpl = `CREATE INDEX idx_product_cmpts_template ON product_cmpts(template);`
)

var schemaDDL = []string{
	createProductCmptTypes,
	createProductCmpts,
}

var indexDDL = []string{
	idxTypesSupertype,
	idxProductCmptsType,
	idxProductCmptsTmpl,
}
