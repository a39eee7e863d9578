package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// BirdsColumns holds the columns for the "birds" table.
	BirdsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "japanese_name", Type: field.TypeString},
		{Name: "scientific_name", Type: field.TypeString, Default: ""},
		{Name: "family", Type: field.TypeString, Default: ""},
		{Name: "order_name", Type: field.TypeString, Default: ""},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "habitat", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// BirdsTable holds the schema information for the "birds" table.
	BirdsTable = &schema.Table{
		Name:       "birds",
		Columns:    BirdsColumns,
		PrimaryKey: []*schema.Column{BirdsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "bird_family", Columns: []*schema.Column{BirdsColumns[3]}},
			{Name: "bird_order_name", Columns: []*schema.Column{BirdsColumns[4]}},
		},
	}

	// BirdImagesColumns holds the columns for the "bird_images" table.
	BirdImagesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "image_url", Type: field.TypeString},
		{Name: "photographer", Type: field.TypeString, Default: ""},
		{Name: "license", Type: field.TypeString, Default: ""},
		{Name: "active", Type: field.TypeBool, Default: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "bird_id", Type: field.TypeString},
	}
	// BirdImagesTable holds the schema information for the "bird_images" table.
	BirdImagesTable = &schema.Table{
		Name:       "bird_images",
		Columns:    BirdImagesColumns,
		PrimaryKey: []*schema.Column{BirdImagesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "bird_images_birds_images",
				Columns:    []*schema.Column{BirdImagesColumns[6]},
				RefColumns: []*schema.Column{BirdsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "birdimage_bird_id_active", Columns: []*schema.Column{BirdImagesColumns[6], BirdImagesColumns[4]}},
		},
	}

	// AnswersColumns holds the columns for the "answers" table.
	AnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "question_id", Type: field.TypeString},
		{Name: "bird_id", Type: field.TypeString, Default: ""},
		{Name: "image_id", Type: field.TypeString, Default: ""},
		{Name: "selected_answer", Type: field.TypeString},
		{Name: "correct_answer", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "time_taken_ms", Type: field.TypeInt64, Default: 0},
		{Name: "answered_at", Type: field.TypeTime},
	}
	// AnswersTable holds the schema information for the "answers" table.
	AnswersTable = &schema.Table{
		Name:       "answers",
		Columns:    AnswersColumns,
		PrimaryKey: []*schema.Column{AnswersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answer_user_id_sequence", Columns: []*schema.Column{AnswersColumns[2], AnswersColumns[1]}},
			{Name: "answer_session_id", Columns: []*schema.Column{AnswersColumns[3]}},
		},
	}

	// QuizResultsColumns holds the columns for the "quiz_results" table.
	QuizResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "total_questions", Type: field.TypeInt},
		{Name: "correct_answers", Type: field.TypeInt},
		{Name: "score", Type: field.TypeInt},
		{Name: "time_taken_ms", Type: field.TypeInt64, Default: 0},
		{Name: "difficulty_level", Type: field.TypeString, Default: "mixed"},
		{Name: "category", Type: field.TypeString, Default: ""},
		{Name: "metadata", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// QuizResultsTable holds the schema information for the "quiz_results" table.
	QuizResultsTable = &schema.Table{
		Name:       "quiz_results",
		Columns:    QuizResultsColumns,
		PrimaryKey: []*schema.Column{QuizResultsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizresult_user_id_sequence", Columns: []*schema.Column{QuizResultsColumns[2], QuizResultsColumns[1]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		BirdsTable,
		BirdImagesTable,
		AnswersTable,
		QuizResultsTable,
	}
)

func init() {
	BirdImagesTable.ForeignKeys[0].RefTable = BirdsTable
}
