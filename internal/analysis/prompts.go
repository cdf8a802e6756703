package analysis

import (
	"fmt"
	"strings"
)

// Placeholders used when a source is absent.
const (
	NoVoiceInput = "No voice input provided."
	NoDocuments  = "No medical documents provided."
	NotProvided  = "Not provided"
)

// Specialist is one role in the analysis chain.
type Specialist struct {
	Role      string
	Goal      string
	Backstory string
}

// SystemPrompt is the system message for the role.
func (s Specialist) SystemPrompt() string {
	return fmt.Sprintf("You are the %s. %s\n\nYour goal: %s", s.Role, s.Backstory, s.Goal)
}

var (
	intakeSpecialist = Specialist{
		Role: "Patient Intake Specialist",
		Goal: "Conduct a warm, professional patient intake interview. Extract personal details, " +
			"chief complaint, symptoms, duration, and severity.",
		Backstory: "You are an experienced medical receptionist and intake specialist. You ask clear, " +
			"empathetic questions to gather complete patient information before their doctor's visit.",
	}

	historyAnalyst = Specialist{
		Role: "Medical History Analyst",
		Goal: "Extract and organize past medical history, current medications, allergies, family history, " +
			"and lifestyle factors from patient-provided documents and speech.",
		Backstory: "You are a clinical data specialist who excels at extracting structured medical history " +
			"from unstructured patient inputs including documents, images, and spoken descriptions.",
	}

	documentAnalyst = Specialist{
		Role: "Medical Document Analyst",
		Goal: "Analyze uploaded medical documents, prescriptions, lab reports, and images to extract " +
			"relevant patient information.",
		Backstory: "You are an expert in reading and interpreting medical documents. You can identify " +
			"medications, diagnoses, test results, and clinical notes from any medical document.",
	}

	profileSummarizer = Specialist{
		Role: "Patient Profile Summarizer",
		Goal: "Synthesize all gathered patient information into a clean, structured intake form ready " +
			"for the doctor.",
		Backstory: "You are a clinical documentation expert who creates precise, well-organized patient " +
			"profiles that help doctors quickly understand a patient's situation before the consultation.",
	}
)

// TranscriptionPrompt steers Whisper toward clinical vocabulary.
const TranscriptionPrompt = "A patient describing their symptoms, medications, allergies and " +
	"medical history before a doctor's visit."

// DocumentPrompt asks for a full extraction of an uploaded document.
const DocumentPrompt = `Analyze this medical document/image and extract ALL information including:
- Patient name and details
- Medications, dosages, and instructions
- Diagnoses and conditions
- Lab results and values
- Doctor's notes and recommendations
- Dates and visit information
- Any other clinically relevant information

Be thorough and precise. Include all numbers, units, and medical terminology.`

// SymptomImagePrompt asks for an objective description of a clinical photo.
const SymptomImagePrompt = `Analyze this clinical image and describe:
- What is visible (wound, rash, swelling, etc.)
- Location on body (if determinable)
- Approximate size/extent
- Color, texture, appearance characteristics
- Any concerning features that should be flagged for the doctor

Be clinically descriptive and objective.`

// FormSections are the headings of the generated intake form, in order.
var FormSections = []string{
	"PATIENT DEMOGRAPHICS",
	"CHIEF COMPLAINT & SYMPTOMS",
	"SYMPTOM TIMELINE",
	"MEDICAL HISTORY",
	"CURRENT MEDICATIONS",
	"ALLERGIES",
	"FAMILY HISTORY",
	"LIFESTYLE & SOCIAL HISTORY",
	"DOCUMENTS REVIEWED",
	"FLAGS & URGENT NOTES",
	"DOCTOR BRIEFING SUMMARY",
}

// UrgentPrefix marks urgent concerns in the form.
const UrgentPrefix = "**⚠️ URGENT:**"

func basicInfoTask(voiceText string) string {
	return fmt.Sprintf(`Analyze the following patient voice/text input and extract:
- Full name
- Age and date of birth
- Gender
- Contact information (if mentioned)
- Chief complaint (main reason for visit)
- Symptom description
- Duration of symptoms
- Severity (1-10 scale if possible)
- Any urgent/emergency flags

Patient Input: %s

If information is missing, note it as '%s'.
Respond with a structured summary of the patient's basic information and chief complaint.`, voiceText, NotProvided)
}

func documentReviewTask(documents string) string {
	return fmt.Sprintf(`Analyze the following extracted text from patient-uploaded medical documents:
%s

Extract:
- Medication names, dosages, and prescribing doctors
- Lab results and their reference ranges
- Previous diagnoses
- Doctor's notes and recommendations
- Dates of previous visits
- Any abnormal findings

Respond with a detailed extraction of all medical information found in the documents.`, documents)
}

func medicalHistoryTask(voiceText, documents string) string {
	return fmt.Sprintf(`Based on the patient input and document analysis, extract and organize:
- Past medical conditions/diagnoses
- Previous surgeries or hospitalizations
- Current medications (name, dosage, frequency)
- Known allergies (medications, food, environmental)
- Family medical history
- Lifestyle factors (smoking, alcohol, exercise)
- Vaccination history (if mentioned)

Patient Input: %s
Document Analysis: %s

Respond with a comprehensive medical history summary organized by category.`, voiceText, documents)
}

func intakeFormTask(basicInfo, documentReview, history string) string {
	var b strings.Builder

	b.WriteString("Using all gathered information, generate a complete, professional patient intake form " +
		"with these sections:\n\n")
	for i, s := range FormSections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}

	fmt.Fprintf(&b, `
Format it cleanly in Markdown. Be precise and clinically appropriate.
Mark any missing information clearly. Flag any urgent concerns with the %s prefix.
Respond with only the intake form.

## Basic information
%s

## Document review
%s

## Medical history
%s
`, UrgentPrefix, basicInfo, documentReview, history)

	return b.String()
}
