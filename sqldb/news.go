package sqldb

import (
	"database/sql"
	"strings"

	"github.com/jdxmedia/noticias/core"
)

type NewsDB struct {
	*sql.DB
	delete      *sql.Stmt
	get         *sql.Stmt
	getAll      *sql.Stmt
	getByAuthor *sql.Stmt
	insert      *sql.Stmt
	setStatus   *sql.Stmt
}

func NewNewsDB(db *sql.DB) *NewsDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS news (
			id varchar(36) PRIMARY KEY,
			title varchar(256) NOT NULL,
			subtitle varchar(256) NOT NULL,
			content text NOT NULL,
			category varchar(64) NOT NULL,
			imageUrl varchar(256) NOT NULL,
			imagePath varchar(256) NOT NULL,
			author varchar(36) NOT NULL,
			status varchar(16) NOT NULL,
			tsCreated int(11) NOT NULL,
			tsUpdated int(11) NOT NULL
		);`)
	// IF NOT EXISTS on indexes is sqlite dialect, mysql ignores the error instead
	db.Exec(`CREATE INDEX IF NOT EXISTS news_status_idx ON news(status, tsCreated);`)
	db.Exec(`CREATE INDEX IF NOT EXISTS news_author_idx ON news(author, tsCreated);`)

	var newsDB = &NewsDB{}
	newsDB.DB = db
	newsDB.delete = mustPrepare(db, "DELETE FROM news WHERE id = ?")
	newsDB.get = mustPrepare(db, selectArticle+" WHERE id = ? LIMIT 1")
	newsDB.getAll = mustPrepare(db, selectArticle+" WHERE ? = '' OR status = ? ORDER BY tsCreated DESC")
	newsDB.getByAuthor = mustPrepare(db, selectArticle+" WHERE author = ? AND (? = '' OR status = ?) ORDER BY tsCreated DESC")
	newsDB.insert = mustPrepare(db, "INSERT INTO news (id, title, subtitle, content, category, imageUrl, imagePath, author, status, tsCreated, tsUpdated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	newsDB.setStatus = mustPrepare(db, "UPDATE news SET status = ?, tsUpdated = ? WHERE id = ?")
	return newsDB
}

const selectArticle = "SELECT id, title, subtitle, content, category, imageUrl, imagePath, author, status, tsCreated, tsUpdated FROM news"

func scanArticle(row interface{ Scan(...interface{}) error }) (*core.Article, error) {
	var a = &core.Article{}
	var status string
	err := row.Scan(&a.ID, &a.Title, &a.Subtitle, &a.Content, &a.Category, &a.ImageURL, &a.ImagePath, &a.Author, &status, &a.TsCreated, &a.TsUpdated)
	if err != nil {
		return nil, err
	}
	a.Status = core.Status(status)
	return a, nil
}

func (db *NewsDB) Writeable() bool {
	return true
}

func (db *NewsDB) DeleteArticle(id string) error {
	_, err := db.delete.Exec(id)
	return err
}

func (db *NewsDB) GetArticle(id string) (*core.Article, error) {
	a, err := scanArticle(db.get.QueryRow(id))
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	return a, err
}

func (db *NewsDB) GetAllArticles(status core.Status) ([]*core.Article, error) {
	rows, err := db.getAll.Query(string(status), string(status))
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func (db *NewsDB) GetArticlesByAuthor(author string, status core.Status) ([]*core.Article, error) {
	rows, err := db.getByAuthor.Query(author, string(status), string(status))
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

func collectArticles(rows *sql.Rows) ([]*core.Article, error) {

	defer rows.Close()

	var all = []*core.Article{}

	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, a)
	}

	return all, rows.Err()
}

func (db *NewsDB) InsertArticle(a *core.Article) error {
	_, err := db.insert.Exec(a.ID, a.Title, a.Subtitle, a.Content, a.Category, a.ImageURL, a.ImagePath, a.Author, string(a.Status), a.TsCreated, a.TsUpdated)
	return err
}

func (db *NewsDB) SetArticleStatus(id string, status core.Status, tsUpdated int64) error {
	res, err := db.setStatus.Exec(string(status), tsUpdated, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// UpdateArticle builds the statement dynamically because the patch is
// partial. The status column is deliberately not reachable from here.
func (db *NewsDB) UpdateArticle(id string, patch core.ArticlePatch, tsUpdated int64) error {

	var sets []string
	var args []interface{}

	var add = func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}

	add("title", patch.Title)
	add("subtitle", patch.Subtitle)
	add("content", patch.Content)
	add("category", patch.Category)
	add("imageUrl", patch.ImageURL)
	add("imagePath", patch.ImagePath)

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "tsUpdated = ?")
	args = append(args, tsUpdated, id)

	res, err := db.Exec("UPDATE news SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}
