package booru

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Post is the normalized record every provider returns.
type Post struct {
	ID         string
	PreviewURL string
	FullURL    string
	PageURL    string
	Author     string
	Tags       string
	Score      int
}

// flexInt accepts JSON numbers and numeric strings; some DAPI mirrors quote
// their integers.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	*n = flexInt(v)
	return nil
}

// dapiPost is one entry of a rule34 or gelbooru DAPI index response.
type dapiPost struct {
	ID         flexInt `json:"id"`
	PreviewURL string  `json:"preview_url"`
	FileURL    string  `json:"file_url"`
	Owner      string  `json:"owner"`
	Tags       string  `json:"tags"`
	Score      flexInt `json:"score"`
}

func (p dapiPost) normalize(host string) Post {
	id := strconv.Itoa(int(p.ID))
	return Post{
		ID:         id,
		PreviewURL: p.PreviewURL,
		FullURL:    p.FileURL,
		PageURL:    fmt.Sprintf("https://%s/index.php?page=post&s=view&id=%s", host, id),
		Author:     p.Owner,
		Tags:       strings.TrimSpace(p.Tags),
		Score:      int(p.Score),
	}
}

// e621Post is one entry of an e621 posts.json response.
type e621Post struct {
	ID   int `json:"id"`
	File struct {
		URL string `json:"url"`
	} `json:"file"`
	Preview struct {
		URL string `json:"url"`
	} `json:"preview"`
	Tags struct {
		General   []string `json:"general"`
		Character []string `json:"character"`
		Species   []string `json:"species"`
		Artist    []string `json:"artist"`
	} `json:"tags"`
	Score struct {
		Total int `json:"total"`
	} `json:"score"`
}

func (p e621Post) normalize(host string) Post {
	tags := make([]string, 0, len(p.Tags.General)+len(p.Tags.Character)+len(p.Tags.Species))
	tags = append(tags, p.Tags.General...)
	tags = append(tags, p.Tags.Character...)
	tags = append(tags, p.Tags.Species...)

	id := strconv.Itoa(p.ID)
	return Post{
		ID:         id,
		PreviewURL: p.Preview.URL,
		FullURL:    p.File.URL,
		PageURL:    fmt.Sprintf("https://%s/posts/%s", host, id),
		Author:     strings.Join(p.Tags.Artist, " "),
		Tags:       strings.Join(tags, " "),
		Score:      p.Score.Total,
	}
}

// decodeDAPI accepts both the bare list rule34 returns and the
// {"@attributes":..., "post":[...]} envelope gelbooru uses.
func decodeDAPI(body []byte) ([]dapiPost, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	switch body[0] {
	case '[':
		var posts []dapiPost
		if err := json.Unmarshal(body, &posts); err != nil {
			return nil, err
		}
		return posts, nil
	case '{':
		var envelope struct {
			Attributes json.RawMessage `json:"@attributes"`
			Post       []dapiPost      `json:"post"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, err
		}
		if envelope.Post == nil && envelope.Attributes == nil {
			return nil, fmt.Errorf("unexpected object without posts")
		}
		return envelope.Post, nil
	default:
		return nil, fmt.Errorf("response is not JSON")
	}
}

func decodeE621(body []byte) ([]e621Post, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var envelope struct {
		Posts []e621Post `json:"posts"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Posts, nil
}
