package sqlite

const schema = `
-- Applications table
CREATE TABLE IF NOT EXISTS applications (
    id INTEGER PRIMARY KEY CHECK(id >= 1),
    state TEXT NOT NULL CHECK(state IN ('Review', 'Interview', 'Waitlist', 'RefCheck', 'Offer', 'Closed')),
    app_type TEXT NOT NULL DEFAULT 'New' CHECK(app_type IN ('New', 'Old', 'Hired')),
    summary TEXT NOT NULL CHECK(length(summary) > 0),
    reviewer TEXT NOT NULL DEFAULT '',
    paperwork_processed INTEGER NOT NULL DEFAULT 0,
    resolution TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_applications_type ON applications(app_type);

-- Notes table; seq keeps the append order of each application's log
CREATE TABLE IF NOT EXISTS notes (
    application_id INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    text TEXT NOT NULL,
    PRIMARY KEY (application_id, seq),
    FOREIGN KEY (application_id) REFERENCES applications(id) ON DELETE CASCADE
);
`
