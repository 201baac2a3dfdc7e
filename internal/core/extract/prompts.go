package extract

import (
	"fmt"
	"strings"
)

const outputSchema = `Return ONLY a JSON object with these fields, using null for anything you cannot read:
{
  "title": "recipe title",
  "category": "one of: %s",
  "prep_time_minutes": 30,
  "cook_time_minutes": 45,
  "servings": "4-6",
  "ingredients": "one ingredient per line, with quantities as written",
  "instructions": "the preparation steps, one per line",
  "notes": "any tips, variations or storage notes",
  "source": "attribution if visible (cookbook, magazine, a person's name)",
  "rating": null
}
Rules:
- Transcribe quantities exactly as written; do not convert units.
- rating must be an integer 1-5 only if the card itself shows one, otherwise null.
- Use null for any field that is absent or illegible. Never invent content.`

func singleImagePrompt() string {
	return fmt.Sprintf(`You are reading a photographed recipe card or page. Extract the recipe it contains.

%s`, schema())
}

func multiImagePrompt(imageCount int) string {
	return fmt.Sprintf(`You are reading %d photographs of the SAME recipe (front and back of a card, or consecutive pages). Merge the information across all images into ONE recipe: ingredients or steps may continue from one image to the next, so read every image before answering. Do not treat the images as separate recipes.

%s`, imageCount, schema())
}

func textDocumentPrompt(document string) string {
	return fmt.Sprintf(`The following text was extracted from a recipe document. Extract the recipe it contains.

%s

--- DOCUMENT ---
%s`, schema(), document)
}

func schema() string {
	return fmt.Sprintf(outputSchema, strings.Join(Categories, ", "))
}
