package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Checklists and their authored items
			CREATE TABLE qa_checklists (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				status VARCHAR(20) NOT NULL CHECK (status IN ('draft', 'published')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_qa_checklists_status ON qa_checklists(status);
			CREATE INDEX idx_qa_checklists_updated_at ON qa_checklists(updated_at);

			CREATE TABLE qa_checklist_items (
				id UUID PRIMARY KEY,
				checklist_id UUID NOT NULL REFERENCES qa_checklists(id) ON DELETE CASCADE,
				ordinal INT NOT NULL,
				category VARCHAR(100),
				description TEXT NOT NULL,
				expected_result TEXT,
				notes TEXT,
				UNIQUE (checklist_id, ordinal)
			);

			CREATE INDEX idx_qa_checklist_items_checklist_id ON qa_checklist_items(checklist_id);

			-- Review sessions over a published checklist
			CREATE TABLE qa_sessions (
				id UUID PRIMARY KEY,
				checklist_id UUID NOT NULL REFERENCES qa_checklists(id) ON DELETE CASCADE,
				name VARCHAR(255) NOT NULL,
				current_phase VARCHAR(20) NOT NULL CHECK (current_phase IN ('phase1', 'phase2', 'completed')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				phase1_started_at TIMESTAMP WITH TIME ZONE,
				phase1_completed_at TIMESTAMP WITH TIME ZONE,
				phase1_completed_by VARCHAR(100),
				phase2_started_at TIMESTAMP WITH TIME ZONE,
				phase2_completed_at TIMESTAMP WITH TIME ZONE,
				phase2_completed_by VARCHAR(100)
			);

			CREATE INDEX idx_qa_sessions_checklist_id ON qa_sessions(checklist_id);
			CREATE INDEX idx_qa_sessions_created_at ON qa_sessions(created_at);

			-- Reusable item templates
			CREATE TABLE qa_templates (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				category VARCHAR(100),
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_qa_templates_category ON qa_templates(category);

			CREATE TABLE qa_template_items (
				id UUID PRIMARY KEY,
				template_id UUID NOT NULL REFERENCES qa_templates(id) ON DELETE CASCADE,
				ordinal INT NOT NULL,
				category VARCHAR(100),
				description TEXT NOT NULL,
				expected_result TEXT,
				notes TEXT,
				UNIQUE (template_id, ordinal)
			);

			CREATE INDEX idx_qa_template_items_template_id ON qa_template_items(template_id);

			-- Supplementary items added during phase 2, scoped to one session
			CREATE TABLE qa_phase2_items (
				id UUID PRIMARY KEY,
				session_id UUID NOT NULL REFERENCES qa_sessions(id) ON DELETE CASCADE,
				ordinal INT NOT NULL,
				category VARCHAR(100),
				description TEXT NOT NULL,
				expected_result TEXT,
				notes TEXT,
				provenance VARCHAR(20) NOT NULL CHECK (provenance IN ('manual', 'template')),
				template_id UUID REFERENCES qa_templates(id) ON DELETE SET NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (session_id, ordinal)
			);

			CREATE INDEX idx_qa_phase2_items_session_id ON qa_phase2_items(session_id);

			-- Append-only validation ledger; seq breaks timestamp ties in insertion order
			CREATE TABLE qa_validations (
				id UUID PRIMARY KEY,
				seq BIGSERIAL,
				session_id UUID NOT NULL REFERENCES qa_sessions(id) ON DELETE CASCADE,
				phase SMALLINT NOT NULL CHECK (phase IN (1, 2)),
				target_kind VARCHAR(20) NOT NULL CHECK (target_kind IN ('checklist_item', 'phase2_item')),
				target_item_id UUID NOT NULL,
				validated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('pass', 'fail', 'skip', 'blocked')),
				actual_result TEXT,
				notes TEXT,
				validator_name VARCHAR(100)
			);

			CREATE INDEX idx_qa_validations_session_id ON qa_validations(session_id);
			CREATE INDEX idx_qa_validations_session_phase ON qa_validations(session_id, phase);
			CREATE INDEX idx_qa_validations_validated_at ON qa_validations(validated_at);
		`,
	}
}
